package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/erraggy/refparser/internal/cliutil"
	"github.com/erraggy/refparser/parser"
)

// operation describes one of the parser entry points exposed as a command.
type operation struct {
	name    string
	short   string
	long    string
	example string
	run     func(context.Context, ...parser.Option) (*parser.Result, error)
	// output selects what is written for a successful result
	output func(*parser.Result) (any, error)
}

var operations = []operation{
	{
		name:  "parse",
		short: "Decode a document without following references",
		long: `Parse reads a single JSON or YAML document and writes it back in the
selected format. $ref pointers are left untouched.`,
		example: `  refparser parse schema.yaml
  cat schema.json | refparser parse -f yaml -`,
		run:    parser.Parse,
		output: documentOutput,
	},
	{
		name:  "resolve",
		short: "List every document reachable through $ref pointers",
		long: `Resolve reads the document and every file or URL its $ref pointers reach,
then lists them with the resolver that read each one. Use --no-external to
stay within the input document.`,
		example: `  refparser resolve api.yaml
  refparser resolve -f yaml https://example.com/schemas/root.json`,
		run:    parser.Resolve,
		output: resolveOutput,
	},
	{
		name:  "dereference",
		short: "Replace every $ref with its target",
		long: `Dereference replaces every $ref pointer with the value it points to. A
document that still contains circular references cannot be written; use
bundle for those, or --circular=error to fail on the first cycle.`,
		example: `  refparser dereference api.yaml -o api.flat.json
  refparser dereference --circular=error api.yaml`,
		run:    parser.Dereference,
		output: dereferenceOutput,
	},
	{
		name:  "bundle",
		short: "Combine external documents into one self-contained document",
		long: `Bundle copies every external document the input references under the
definitions key (default $defs) and rewrites the $refs to point there. The
result only contains internal references.`,
		example: `  refparser bundle api.yaml -o bundled.yaml
  refparser bundle --definitions-key components/schemas api.yaml`,
		run:    parser.Bundle,
		output: documentOutput,
	},
}

// documentSummary is the structured output of the resolve command.
type documentSummary struct {
	Root         string         `json:"root" yaml:"root"`
	Documents    []documentInfo `json:"documents" yaml:"documents"`
	Circular     bool           `json:"circular" yaml:"circular"`
	CircularRefs []circularInfo `json:"circularRefs,omitempty" yaml:"circularRefs,omitempty"`
}

type documentInfo struct {
	URL  string `json:"url" yaml:"url"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

type circularInfo struct {
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target" yaml:"target"`
}

func documentOutput(result *parser.Result) (any, error) {
	return result.Schema, nil
}

func dereferenceOutput(result *parser.Result) (any, error) {
	if result.Circular() {
		return nil, cliutil.ErrCircularOutput
	}
	return result.Schema, nil
}

func resolveOutput(result *parser.Result) (any, error) {
	summary := documentSummary{
		Root:      result.SourcePath,
		Documents: make([]documentInfo, 0, result.Refs.Len()),
		Circular:  result.Circular(),
	}
	for _, loc := range result.Refs.Paths() {
		info := documentInfo{URL: loc}
		if rec, ok := result.Refs.Record(loc); ok {
			info.Type = rec.PathType
		}
		summary.Documents = append(summary.Documents, info)
	}
	for _, c := range result.Refs.CircularRefs() {
		summary.CircularRefs = append(summary.CircularRefs, circularInfo{Path: c.Path, Target: c.Target})
	}
	return summary, nil
}

func newOperationCommand(g *globalFlags, op operation) *cobra.Command {
	return &cobra.Command{
		Use:     op.name + " <file|url|->",
		Short:   op.short,
		Long:    op.long,
		Example: op.example,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.baseOptions(cmd)
			if err != nil {
				return err
			}
			input, err := g.inputOptions(cmd, args[0])
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := op.run(cmd.Context(), append(opts, input...)...)
			if err != nil {
				return err
			}
			g.logger.Info().
				Str("operation", op.name).
				Str("source", result.SourcePath).
				Int("documents", result.Refs.Len()).
				Bool("circular", result.Circular()).
				Dur("duration", time.Since(start)).
				Msg("Operation completed")

			out, err := op.output(result)
			if err != nil {
				return err
			}
			return g.writeResult(cmd, out, args[0])
		},
	}
}
