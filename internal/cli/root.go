// Package cli implements the mockup command line.
package cli

import (
	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
)

type rootOpts struct {
	verbose bool
}

func (o *rootOpts) logger(cmd *cobra.Command) *log.Logger {
	level := log.InfoLevel
	if o.verbose {
		level = log.DebugLevel
	}

	return &log.Logger{
		Handler: logcli.New(cmd.ErrOrStderr()),
		Level:   level,
	}
}

// NewCmdRoot creates the root command.
func NewCmdRoot() *cobra.Command {
	opts := &rootOpts{}

	rootCmd := &cobra.Command{
		Use:   "mockup",
		Short: "Render data files through templates",
		Long: `Evaluate data files (Lua, HCL, YAML or JSON), look up the template they name
and write the rendered markup to a destination directory.`,
		Example: `$ mockup render -t templates -d dist src
  $ mockup render --config mockup.yaml --measure --graph pipeline.gv src pages`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logs")

	rootCmd.AddCommand(NewRenderCmd(opts))

	return rootCmd
}
