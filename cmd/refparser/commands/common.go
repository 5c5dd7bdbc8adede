package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/erraggy/refparser/config"
	"github.com/erraggy/refparser/dereferencer"
	"github.com/erraggy/refparser/internal/cliutil"
	"github.com/erraggy/refparser/internal/locator"
	"github.com/erraggy/refparser/logging"
	"github.com/erraggy/refparser/parser"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// baseOptions returns the parser options from the configuration files and
// environment, overridden by the flags the user set.
func (g *globalFlags) baseOptions(cmd *cobra.Command) ([]parser.Option, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile:     g.configFile,
		SkipUserConfig: g.noUserConfig,
	})
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("no-external") {
		opts = append(opts, parser.WithExternal(!g.noExternal))
	}
	if flags.Changed("circular") {
		mode, err := dereferencer.ParseCircularMode(g.circular)
		if err != nil {
			return nil, err
		}
		opts = append(opts, parser.WithCircular(mode))
	}
	if g.definitionsKey != "" {
		opts = append(opts, parser.WithDefinitionsKey(g.definitionsKey))
	}
	opts = append(opts, parser.WithLogger(logging.NewZerologAdapter(g.logger)))
	return opts, nil
}

// inputOptions selects the input source for path, reading stdin for "-".
func (g *globalFlags) inputOptions(cmd *cobra.Command, path string) ([]parser.Option, error) {
	if path != StdinFilePath {
		if g.baseURL != "" {
			return nil, fmt.Errorf("--base-url only applies when reading from stdin")
		}
		return []parser.Option{parser.WithFilePath(path)}, nil
	}
	opts := []parser.Option{parser.WithReader(cmd.InOrStdin())}
	if g.baseURL != "" {
		base := g.baseURL
		if !locator.HasScheme(base) {
			abs, err := filepath.Abs(base)
			if err != nil {
				return nil, fmt.Errorf("invalid base URL %s: %w", base, err)
			}
			base = abs
		}
		opts = append(opts, parser.WithBaseURL(base))
	}
	return opts, nil
}

// outputFormat returns the --format value, or the format implied by the
// --output extension when --format was not given.
func (g *globalFlags) outputFormat(cmd *cobra.Command) string {
	if cmd.Flags().Changed("format") || g.output == "" {
		return g.format
	}
	return cliutil.FormatFor(g.output, g.format)
}

// writeResult encodes v and writes it to --output or stdout. input is never
// overwritten.
func (g *globalFlags) writeResult(cmd *cobra.Command, v any, input string) error {
	format := g.outputFormat(cmd)
	data, err := cliutil.Encode(v, format)
	if err != nil {
		return err
	}
	written, err := cliutil.WriteOutput(cmd.OutOrStdout(), g.output, data, input)
	if err != nil {
		return err
	}
	if written != "" {
		cliutil.Writef(cmd.ErrOrStderr(), "Wrote %s (%s, %d bytes)\n", written, format, len(data))
	}
	return nil
}
