package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/refparser/dereferencer"
	"github.com/erraggy/refparser/internal/cliutil"
	"github.com/erraggy/refparser/parser"
)

// tools holds the options shared by every tool call.
type tools struct {
	base []parser.Option
}

type refInput struct {
	Spec           specInput `json:"spec"                      jsonschema:"The document to process"`
	External       *bool     `json:"external,omitempty"        jsonschema:"Follow references to other files and URLs (default true)"`
	Circular       string    `json:"circular,omitempty"        jsonschema:"Circular reference policy for dereference: allow (default), ignore, or error"`
	DefinitionsKey string    `json:"definitions_key,omitempty" jsonschema:"Where bundle places external documents, e.g. components/schemas (default $defs)"`
	Format         string    `json:"format,omitempty"          jsonschema:"Encoding of the returned document: json (default) or yaml"`
	Full           bool      `json:"full,omitempty"            jsonschema:"Return the resulting document (always on for dereference and bundle)"`
}

type documentInfo struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

type circularInfo struct {
	Path   string `json:"path"`
	Target string `json:"target"`
}

type refOutput struct {
	SourcePath   string         `json:"source_path,omitempty"`
	Documents    []documentInfo `json:"documents"`
	Circular     bool           `json:"circular"`
	CircularRefs []circularInfo `json:"circular_refs,omitempty"`
	Format       string         `json:"format,omitempty"`
	Document     string         `json:"document,omitempty"`
	Warning      string         `json:"warning,omitempty"`
}

func (t *tools) handleParse(ctx context.Context, _ *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, refOutput, error) {
	return t.handle(ctx, opParse, input)
}

func (t *tools) handleResolve(ctx context.Context, _ *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, refOutput, error) {
	return t.handle(ctx, opResolve, input)
}

func (t *tools) handleDereference(ctx context.Context, _ *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, refOutput, error) {
	input.Full = true
	return t.handle(ctx, opDereference, input)
}

func (t *tools) handleBundle(ctx context.Context, _ *mcp.CallToolRequest, input refInput) (*mcp.CallToolResult, refOutput, error) {
	input.Full = true
	return t.handle(ctx, opBundle, input)
}

// options converts the tool settings to parser options and a cache key
// fragment identifying them.
func (input refInput) options() ([]parser.Option, string, error) {
	var opts []parser.Option
	external := input.External == nil || *input.External
	if input.External != nil {
		opts = append(opts, parser.WithExternal(external))
	}

	mode := dereferencer.CircularAllow
	if input.Circular != "" {
		var err error
		if mode, err = dereferencer.ParseCircularMode(input.Circular); err != nil {
			return nil, "", err
		}
		opts = append(opts, parser.WithCircular(mode))
	}
	if input.DefinitionsKey != "" {
		opts = append(opts, parser.WithDefinitionsKey(input.DefinitionsKey))
	}
	settings := fmt.Sprintf("external=%t,circular=%s,defs=%s", external, mode, input.DefinitionsKey)
	return opts, settings, nil
}

func (t *tools) handle(ctx context.Context, op operation, input refInput) (*mcp.CallToolResult, refOutput, error) {
	format := input.Format
	if format == "" {
		format = cliutil.FormatJSON
	}
	if err := cliutil.ValidateFormat(format); err != nil {
		return errResult(err), refOutput{}, nil
	}
	extraOpts, settings, err := input.options()
	if err != nil {
		return errResult(err), refOutput{}, nil
	}

	opts := append(append([]parser.Option(nil), t.base...), extraOpts...)
	result, err := input.Spec.resolve(ctx, op, settings, opts...)
	if err != nil {
		return errResult(err), refOutput{}, nil
	}

	output := refOutput{
		SourcePath: result.SourcePath,
		Circular:   result.Circular(),
		Documents:  make([]documentInfo, 0, result.Refs.Len()),
	}
	for _, loc := range result.Refs.Paths() {
		info := documentInfo{URL: loc}
		if rec, ok := result.Refs.Record(loc); ok {
			info.Type = rec.PathType
		}
		output.Documents = append(output.Documents, info)
	}
	for _, c := range result.Refs.CircularRefs() {
		output.CircularRefs = append(output.CircularRefs, circularInfo{Path: c.Path, Target: c.Target})
	}

	if !input.Full {
		return nil, output, nil
	}
	if op == opDereference && output.Circular {
		output.Warning = cliutil.ErrCircularOutput.Error()
		return nil, output, nil
	}
	data, err := cliutil.Encode(result.Schema, format)
	if err != nil {
		return errResult(err), refOutput{}, nil
	}
	output.Format = format
	output.Document = string(data)
	return nil, output, nil
}
