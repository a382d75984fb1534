package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fazecat/squeezescope/Internal/handlers"
	"github.com/fazecat/squeezescope/Internal/utils/config"
	"github.com/fazecat/squeezescope/Internal/utils/logging"
)

// app is what every subcommand shares once PersistentPreRunE has run.
type app struct {
	cfgFile string
	asJSON  bool
	color   bool
	verbose bool

	cfg      *config.Config
	logger   *zap.Logger
	screener *handlers.Screener
	closeFn  func()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "squeeze",
		Short:         "Short-squeeze screener for the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is the bundled config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&a.color, "color", false, "colorize JSON output")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(newListCmd(a), newShowCmd(a), newWatchCmd(a))
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadConfigFrom(a.cfgFile)
	} else {
		a.cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a.logger = logging.Discard()
	if a.verbose {
		a.logger = logging.NewWithWriter(a.cfg.Logging, zapcore.AddSync(cmd.ErrOrStderr()))
	}

	a.screener, a.closeFn, err = handlers.Bootstrap(cmd.Context(), a.cfg, a.logger.Named("squeeze"))
	return err
}

func (a *app) close() {
	if a.closeFn != nil {
		a.closeFn()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// printJSON writes v indented, and colored when --color is set.
func (a *app) printJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	out := pretty.Pretty(data)
	if a.color {
		out = pretty.Color(out, nil)
	}
	_, err = w.Write(out)
	return err
}
