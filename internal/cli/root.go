package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/donorlog/internal/config"
	"github.com/roach88/donorlog/internal/logging"
	"github.com/roach88/donorlog/internal/registry"
	"github.com/roach88/donorlog/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ConfigPath  string
	StoragePath string
	Backend     string

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs logging.RunIDGenerator

	// Config is resolved before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the donorlog CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donorlog",
		Short: "donorlog - blood donation records",
		Long: `Manage blood-donation records kept one per line in a comma-separated file.

Each command loads the whole store, applies one change and writes the whole
store back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVarP(&opts.StoragePath, "storage", "s", "", "path to the record store (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "store backend: file|sqlite (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewMenuCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))

	return cmd
}

// prepare validates flags, resolves configuration and installs a logger
// tagged with a fresh run ID in the command context.
func (opts *RootOptions) prepare(cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.StoragePath != "" {
		cfg.Storage.Path = opts.StoragePath
	}
	if opts.Backend != "" {
		if _, err := store.ParseKind(opts.Backend); err != nil {
			return WrapExitError(ExitCommandError, "invalid --backend", err)
		}
		cfg.Storage.Backend = opts.Backend
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	opts.Config = cfg

	// Logs go to stderr; stdout carries command output. The logger is also
	// the slog default for code that has no command context.
	logger := logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, _ := logging.WithRun(parent, logger, opts.RunIDs)
	cmd.SetContext(ctx)

	logging.FromContext(ctx).Debug("command starting",
		"command", cmd.Name(),
		"storage", cfg.Storage.Path,
		"backend", cfg.Storage.Backend,
	)
	return nil
}

// openRegistry opens the configured backend and wraps it in a registry.
// Callers must close the returned backend.
func (opts *RootOptions) openRegistry() (*registry.Registry, store.Backend, error) {
	backend, err := store.Open(store.Kind(opts.Config.Storage.Backend), opts.Config.Storage.Path)
	if err != nil {
		return nil, nil, err
	}
	return registry.New(backend), backend, nil
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
