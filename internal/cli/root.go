// Package cli contains the dvpublish commands.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/askiada/dvpublish/internal/config"
	"github.com/askiada/dvpublish/pkg/publish/model"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	logger  *log.Logger
}

// NewRootCommand returns the dvpublish command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Publish machine learning datasets to a Dataverse repository",
		Long: `dvpublish checks that a dataset folder matches its declared type, packs it into a
zip archive, creates a dataset record from a metadata template and attaches the archive
to the new record.

Connection settings are read from a file named config (config.toml, config.yaml, ...)
in the working directory, or from --config, under the "config" table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.{toml,yaml,json})")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newPublishCommand(a))
	rootCmd.AddCommand(newValidateCommand(a))
	rootCmd.AddCommand(newTemplateCommand(a))

	return rootCmd
}

func newLogger(wrt io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(wrt, log.Options{
		Prefix: config.AppName,
	})

	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}

func (a *app) loadConfig() (*config.Config, error) {
	return config.Load(config.LoadOptions{FilePath: a.cfgFile})
}

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	logger := newLogger(stderr, false)

	kind := model.KindOf(err)
	if kind == "" {
		logger.Error(err.Error())
	} else {
		logger.Error(err.Error(), "kind", kind)
	}

	return 1
}
