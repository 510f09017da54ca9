package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/chemcomp/internal/composition"
)

// ParseResult describes a parsed composition.
type ParseResult struct {
	Formula    string         `json:"formula"`
	Counts     map[string]int `json:"counts"`
	NAtoms     int            `json:"natoms"`
	NSpecies   int            `json:"nspecies"`
	GCD        int            `json:"gcd"` // 0 for the empty composition
	SpeciesHex string         `json:"species_hex"`
}

func newParseResult(c composition.Composition) ParseResult {
	gcd, _ := c.GCD()
	return ParseResult{
		Formula:    c.Formula(),
		Counts:     c.Map(),
		NAtoms:     c.NAtoms(),
		NSpecies:   c.Len(),
		GCD:        gcd,
		SpeciesHex: c.SpeciesHex(),
	}
}

// String renders one field per line, counts alphabetically.
func (r ParseResult) String() string {
	var b strings.Builder
	line := func(key, value string) {
		fmt.Fprintf(&b, "%-13s%s\n", key, value)
	}

	line("formula", orDash(r.Formula))
	line("natoms", fmt.Sprint(r.NAtoms))
	line("nspecies", fmt.Sprint(r.NSpecies))
	if r.GCD == 0 {
		line("gcd", "-")
	} else {
		line("gcd", fmt.Sprint(r.GCD))
	}
	line("species_hex", r.SpeciesHex)

	pairs := make([]string, 0, len(r.Counts))
	for _, s := range slices.Sorted(maps.Keys(r.Counts)) {
		pairs = append(pairs, fmt.Sprintf("%s:%d", s, r.Counts[s]))
	}
	line("counts", orDash(strings.Join(pairs, " ")))
	return strings.TrimSuffix(b.String(), "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <formula>",
		Short: "Parse a formula and summarize the composition",
		Long: `Parse a chemical formula into species counts.

A repeated species keeps its last count ("H2H3" has H:3). Subscript digits and
fullwidth letters are normalized first, so "H₂O" reads as "H2O".

Exit codes:
  0 - Formula parsed
  1 - Unknown symbol
  2 - Command error

Examples:
  chemcomp parse YBa2Cu3O7
  chemcomp parse H2O --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runParse(opts *RootOptions, formula string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}

	c, err := composition.FromFormula(formula, opts.compositionOptions()...)
	if err != nil {
		return fail(opts, cmd, err)
	}
	opts.Logger.Debug("formula parsed", "input", formula, "species", c.Len())
	return opts.formatter(cmd).Success(newParseResult(c))
}

// FormulaOptions holds flags for the formula command.
type FormulaOptions struct {
	*RootOptions
	Order   string
	Reduced bool
}

// FormulaResult is a rendered formula.
type FormulaResult struct {
	Formula string `json:"formula"`
	Order   string `json:"order"`
	Reduced bool   `json:"reduced"`
}

func (r FormulaResult) String() string {
	return r.Formula
}

// NewFormulaCommand creates the formula command.
func NewFormulaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormulaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "formula <formula>",
		Short: "Render the canonical formula",
		Long: `Render a formula with species in canonical order.

Orders:
  alpha       species sorted by symbol
  electroneg  ascending Pauling electronegativity
  hill        C, then H, then the rest alphabetically

Counts are divided by their GCD unless --reduced=false.
The default order comes from the formula.order config key.

Examples:
  chemcomp formula Na2Cl2
  chemcomp formula SO4H2 --order hill
  chemcomp formula YBa2Cu3O7 --order electroneg --reduced=false`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormula(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Order, "order", "", "species order (alpha|electroneg|hill)")
	cmd.Flags().BoolVar(&opts.Reduced, "reduced", true, "divide counts by their GCD")

	return cmd
}

func runFormula(opts *FormulaOptions, formula string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}

	orderName := opts.Order
	if orderName == "" {
		orderName = opts.Config.Formula.Order
	}
	order, err := composition.ParseOrder(orderName)
	if err != nil {
		return fail(opts.RootOptions, cmd, err)
	}

	c, err := composition.FromFormula(formula, opts.compositionOptions()...)
	if err != nil {
		return fail(opts.RootOptions, cmd, err)
	}

	return opts.formatter(cmd).Success(FormulaResult{
		Formula: c.SortedFormula(order, opts.Reduced),
		Order:   string(order),
		Reduced: opts.Reduced,
	})
}

// ExpandOptions holds flags for the expand command.
type ExpandOptions struct {
	*RootOptions
	Units int
}

// ExpandResult is a formula expanded to one symbol per atom.
type ExpandResult struct {
	Symbols []string `json:"symbols"`
	NAtoms  int      `json:"natoms"`
}

func (r ExpandResult) String() string {
	return orDash(strings.Join(r.Symbols, " "))
}

// NewExpandCommand creates the expand command.
func NewExpandCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExpandOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "expand <formula>",
		Short: "List one symbol per atom",
		Long: `Expand a formula into one symbol per atom, in the order the species
appear, repeated for --units formula units.

Examples:
  chemcomp expand H2O
  chemcomp expand NaCl --units 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Units, "units", 1, "number of formula units")

	return cmd
}

func runExpand(opts *ExpandOptions, formula string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	if opts.Units < 1 {
		formatter := opts.formatter(cmd)
		msg := fmt.Sprintf("units must be at least 1, got %d", opts.Units)
		if err := formatter.Error(ErrCodeGeneric, msg, nil); err != nil {
			return err
		}
		return reportedExitError(ExitFailure, msg, nil)
	}

	// Validate every symbol before listing them
	normalized := norm.NFKC.String(formula)
	if _, err := composition.FromFormulaUnits(normalized, opts.Units, opts.compositionOptions()...); err != nil {
		return fail(opts.RootOptions, cmd, err)
	}

	symbols := composition.FormulaToList(normalized, opts.Units)
	return opts.formatter(cmd).Success(ExpandResult{
		Symbols: symbols,
		NAtoms:  len(symbols),
	})
}
