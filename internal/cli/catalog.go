package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chemcomp/internal/catalog"
	"github.com/roach88/chemcomp/internal/composition"
)

// CatalogOptions holds flags shared by the catalog subcommands.
type CatalogOptions struct {
	*RootOptions
	DB string
}

// EntryView renders one catalog entry as field lines.
type EntryView catalog.Entry

func (e EntryView) String() string {
	var b strings.Builder
	line := func(key, value string) {
		fmt.Fprintf(&b, "%-13s%s\n", key, value)
	}
	line("label", e.Label)
	line("formula", orDash(e.Formula))
	line("hill", orDash(e.HillFormula))
	line("natoms", fmt.Sprint(e.NAtoms))
	line("nspecies", fmt.Sprint(e.NSpecies))
	line("species_hex", e.SpeciesHex)
	line("species_key", e.SpeciesKey.String())
	line("id", e.ID)
	return strings.TrimSuffix(b.String(), "\n")
}

// EntryList renders entries as an aligned table, one row per entry.
type EntryList []catalog.Entry

func (l EntryList) String() string {
	if len(l) == 0 {
		return "No entries."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %-16s %-12s %s\n", "LABEL", "FORMULA", "SPECIES", "NATOMS")
	for _, e := range l {
		fmt.Fprintf(&b, "%-16s %-16s %-12s %d\n", e.Label, orDash(e.Formula), e.SpeciesHex, e.NAtoms)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// MarshalJSON renders an empty list as [] rather than null.
func (l EntryList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]catalog.Entry(l))
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the composition catalog",
		Long: `Store named compositions in a SQLite catalog and look them up by
reduced formula or species set.

The database path comes from --db, then the catalog.db config key.`,
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "catalog database path")

	cmd.AddCommand(newCatalogAddCommand(opts))
	cmd.AddCommand(newCatalogGetCommand(opts))
	cmd.AddCommand(newCatalogFindCommand(opts))
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogDeleteCommand(opts))

	return cmd
}

// open sets up the root options and opens the catalog database.
func (o *CatalogOptions) open(cmd *cobra.Command) (*catalog.Catalog, error) {
	if err := o.setup(cmd); err != nil {
		return nil, err
	}

	path := o.DB
	if path == "" {
		path = o.Config.Catalog.DB
	}
	o.Logger.Debug("opening catalog", "db", path)

	cat, err := catalog.Open(path,
		catalog.WithRegistry(o.Registry),
		catalog.WithLogger(o.Logger),
	)
	if err != nil {
		o.formatter(cmd).Error(ErrCodeDatabase, err.Error(), nil)
		return nil, reportedExitError(ExitCommandError, ErrCodeDatabase, err)
	}
	return cat, nil
}

func newCatalogAddCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label> <formula>",
		Short: "Store a composition under a label",
		Long: `Store a composition under a label.

Adding the same composition under the same label again is a no-op.
A label already bound to a different composition is rejected.

Examples:
  chemcomp catalog add ybco YBa2Cu3O7
  chemcomp catalog add salt NaCl --db ./compositions.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			c, err := composition.FromFormula(args[1], opts.compositionOptions()...)
			if err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			entry, err := cat.Put(cmd.Context(), args[0], c)
			if err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			return opts.formatter(cmd).Success(EntryView(entry))
		},
	}
}

func newCatalogGetCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <label>",
		Short:         "Show one catalog entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			entry, err := cat.Get(cmd.Context(), args[0])
			if err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			return opts.formatter(cmd).Success(EntryView(entry))
		},
	}
}

func newCatalogFindCommand(opts *CatalogOptions) *cobra.Command {
	var species, formula string

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find entries by species set or reduced formula",
		Long: `Find entries sharing a species set (--species) or a reduced
formula (--formula). Exactly one of the two flags is required.

Examples:
  chemcomp catalog find --species 0x38271d08
  chemcomp catalog find --formula Cl2Na2`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (species == "") == (formula == "") {
				return NewExitError(ExitCommandError, "exactly one of --species or --formula is required")
			}

			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			var entries []catalog.Entry
			if species != "" {
				entries, err = cat.FindBySpecies(cmd.Context(), species)
			} else {
				entries, err = cat.FindByFormula(cmd.Context(), formula)
			}
			if err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			return opts.formatter(cmd).Success(EntryList(entries))
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "species hex (0x prefix optional)")
	cmd.Flags().StringVar(&formula, "formula", "", "formula, matched after GCD reduction")

	return cmd
}

func newCatalogListCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List all catalog entries",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			entries, err := cat.List(cmd.Context())
			if err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			return opts.formatter(cmd).Success(EntryList(entries))
		},
	}
}

// DeleteResult reports a removed label.
type DeleteResult struct {
	Deleted string `json:"deleted"`
}

func (r DeleteResult) String() string {
	return "deleted " + r.Deleted
}

func newCatalogDeleteCommand(opts *CatalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <label>",
		Short:         "Remove a catalog entry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer cat.Close()

			if err := cat.Delete(cmd.Context(), args[0]); err != nil {
				return fail(opts.RootOptions, cmd, err)
			}
			return opts.formatter(cmd).Success(DeleteResult{Deleted: args[0]})
		},
	}
}
