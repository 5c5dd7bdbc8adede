// Package commands provides the cobra commands of the refparser CLI.
package commands

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/erraggy/refparser/internal/cliutil"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	verbosity      int
	configFile     string
	noUserConfig   bool
	baseURL        string
	noExternal     bool
	circular       string
	definitionsKey string
	format         string
	output         string

	logger    zerolog.Logger
	logCloser io.Closer
}

// NewRootCommand builds the refparser command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "refparser",
		Short: "Parse, resolve, dereference and bundle JSON/YAML $ref pointers",
		Long: `refparser reads a JSON or YAML document and follows its $ref pointers
across files and URLs.

  parse        decode the document without following references
  resolve      read every referenced document and list them
  dereference  replace every $ref with its target
  bundle       move external documents under a definitions key

Use "-" as the input to read from stdin; --base-url then sets the location
relative references resolve against.

Defaults come from $XDG_CONFIG_HOME/refparser/config.toml, a project
.refparser.toml or .refparser.yaml, and REFPARSER_* environment variables.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("format") {
				if err := cliutil.ValidateFormat(g.format); err != nil {
					return err
				}
			}
			g.logger, g.logCloser = setupLogger(g.verbosity, cmd.ErrOrStderr())
			g.logger.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if g.logCloser != nil {
				return g.logCloser.Close()
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.CountVarP(&g.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.StringVar(&g.configFile, "config", "", "config file loaded after the user and project config")
	pf.BoolVar(&g.noUserConfig, "no-user-config", false, "ignore $XDG_CONFIG_HOME/refparser/config.toml")
	pf.StringVar(&g.baseURL, "base-url", "", "location of a document read from stdin")
	pf.BoolVar(&g.noExternal, "no-external", false, "do not follow references to other files and URLs")
	pf.StringVar(&g.circular, "circular", "", "circular reference policy: allow, ignore or error")
	pf.StringVar(&g.definitionsKey, "definitions-key", "", "where bundle places external documents (default $defs)")
	pf.StringVarP(&g.format, "format", "f", cliutil.FormatJSON, "output format: json or yaml")
	pf.StringVarP(&g.output, "output", "o", "", "write the result to a file instead of stdout")

	for _, op := range operations {
		root.AddCommand(newOperationCommand(g, op))
	}
	root.AddCommand(newMCPCommand(g))
	root.AddCommand(newVersionCommand())
	return root
}
