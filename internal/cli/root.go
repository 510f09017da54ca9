package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/chemcomp/internal/composition"
	"github.com/roach88/chemcomp/internal/periodic"
)

// RootOptions holds global flags for all commands, plus the config,
// element table and logger derived from them.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Elements   string // overrides the elements config key

	Config   *Config
	Registry *periodic.Table
	Logger   *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the chemcomp CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chemcomp",
		Short: "chemcomp - chemical composition toolkit",
		Long: `Parse chemical formulas, render canonical formulas, encode species sets
and keep a catalog of named compositions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&opts.Elements, "elements", "", "alternate element table (.yaml or .cue)")

	// Add subcommands
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewFormulaCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))
	cmd.AddCommand(NewHexCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewVolumeCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates the global flags and loads config, element table and
// logger. It is idempotent so subcommands built directly (as in tests) can
// call it from RunE.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if o.Format == "" {
		o.Format = "text"
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.Config != nil {
		return nil
	}

	cfg, err := LoadConfig(o.ConfigPath)
	if err != nil {
		o.formatter(cmd).Error(ErrCodeConfig, err.Error(), nil)
		return reportedExitError(ExitCommandError, ErrCodeConfig, err)
	}
	if o.Elements != "" {
		cfg.Elements = o.Elements
	}

	registry := periodic.Default()
	if cfg.Elements != "" {
		registry, err = periodic.LoadTable(cfg.Elements)
		if err != nil {
			o.formatter(cmd).Error(ErrCodeElements, err.Error(), nil)
			return reportedExitError(ExitCommandError, ErrCodeElements, err)
		}
	}

	o.Config = cfg
	o.Registry = registry
	o.Logger = SetupLogger(cfg, cmd.ErrOrStderr(), o.Verbose)
	o.Logger.Debug("configuration loaded",
		"config", o.ConfigPath,
		"elements", cfg.Elements,
		"elements_count", registry.Len(),
	)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

func (o *RootOptions) compositionOptions() []composition.Option {
	return []composition.Option{composition.WithRegistry(o.Registry)}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
