// Package cli implements the canvas command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/canvasboard/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootOptions holds global flag values and the state PersistentPreRunE
// loads for every subcommand.
type rootOptions struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string

	config *viper.Viper
	logger *slog.Logger
}

// NewRootCmd creates the top-level "canvas" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "canvas",
		Short: "Saved views and projections over business canvas data",
		Long: `canvas stores customer segments, personas, value propositions and business
models, and serves saved views that filter, sort, group and paginate them.`,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $CANVAS_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "data directory (default: $(CWD)/.canvas-db)")
	root.PersistentFlags().BoolVar(&opts.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newOptionsCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newImportCmd(opts))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "canvas:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// load resolves the config directory, reads config.yaml and installs the
// logger.
func (o *rootOptions) load(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(o.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	o.configDir = configDir
	o.config = cfg

	level := cfg.GetString(cfgKeyLogLevel)
	if o.logLevel != "" {
		level = o.logLevel
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level, cfg.GetString(cfgKeyLogFormat))
	if err != nil {
		return err
	}
	o.logger = logger
	slog.SetDefault(logger)
	return nil
}

// errSys marks failures of the environment (filesystem, database) rather
// than of the user's input.
type errSys struct{ err error }

func (e errSys) Error() string { return e.err.Error() }
func (e errSys) Unwrap() error { return e.err }

func sysError(err error) error {
	if err == nil {
		return nil
	}
	return errSys{err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se errSys
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}
