package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/chemcomp/internal/composition"
)

// HexResult is the species-set encoding of a composition.
type HexResult struct {
	SpeciesHex    string    `json:"species_hex"`
	SpeciesKey    uuid.UUID `json:"species_key"`
	AtomicNumbers []int     `json:"atomic_numbers"`
}

func (r HexResult) String() string {
	return r.SpeciesHex
}

// NewHexCommand creates the hex command.
func NewHexCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hex <formula>",
		Short: "Encode the species set as hex",
		Long: `Encode the set of species as a base-256 integer in hex.

Each byte is one atomic number, lightest species in the least significant
byte. Counts are ignored, so YBa2Cu3O7 and Y2Ba4Cu6O14 share a token.
JSON output adds the UUIDv5 species key and the atomic numbers.

Examples:
  chemcomp hex YBa2Cu3O7
  chemcomp hex NaCl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHex(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runHex(opts *RootOptions, formula string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}

	c, err := composition.FromFormula(formula, opts.compositionOptions()...)
	if err != nil {
		return fail(opts, cmd, err)
	}
	return opts.formatter(cmd).Success(HexResult{
		SpeciesHex:    c.SpeciesHex(),
		SpeciesKey:    c.SpeciesKey(),
		AtomicNumbers: c.AtomicNumbers(),
	})
}

// DecodeResult lists the atomic numbers recovered from a species hex.
// Symbols holds "?" for numbers the element table does not know.
type DecodeResult struct {
	AtomicNumbers []int    `json:"atomic_numbers"`
	Symbols       []string `json:"symbols"`
}

// String renders "8 29 39 56 (O Cu Y Ba)".
func (r DecodeResult) String() string {
	if len(r.AtomicNumbers) == 0 {
		return "-"
	}
	numbers := make([]string, len(r.AtomicNumbers))
	for i, z := range r.AtomicNumbers {
		numbers[i] = strconv.Itoa(z)
	}
	return fmt.Sprintf("%s (%s)", strings.Join(numbers, " "), strings.Join(r.Symbols, " "))
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a species hex into atomic numbers",
		Long: `Decode a species hex back into ascending atomic numbers.

The 0x prefix is optional.

Examples:
  chemcomp decode 0x38271d08
  chemcomp decode 110b --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDecode(opts *RootOptions, hex string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}

	numbers, err := composition.DecodeHex(hex)
	if err != nil {
		return fail(opts, cmd, err)
	}

	symbols := make([]string, len(numbers))
	for i, z := range numbers {
		s, ok := opts.Registry.SymbolOf(z)
		if !ok {
			s = "?"
		}
		symbols[i] = s
	}
	return opts.formatter(cmd).Success(DecodeResult{
		AtomicNumbers: numbers,
		Symbols:       symbols,
	})
}

// VolumeOptions holds flags for the volume command.
type VolumeOptions struct {
	*RootOptions
	Packing string
}

// VolumeResult is a covalent volume estimate in cubic Angstrom.
type VolumeResult struct {
	Volume  float64 `json:"volume"`
	Packing string  `json:"packing"`
}

func (r VolumeResult) String() string {
	return fmt.Sprintf("%.6f", r.Volume)
}

// NewVolumeCommand creates the volume command.
func NewVolumeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VolumeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "volume <formula>",
		Short: "Estimate the covalent volume",
		Long: `Estimate the volume of a composition from covalent radii.

Packings:
  cubes    each atom fills a cube of side 2r
  spheres  each atom fills a sphere of radius r

The default packing comes from the formula.packing config key.

Examples:
  chemcomp volume H2O
  chemcomp volume YBa2Cu3O7 --packing spheres`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolume(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Packing, "packing", "", "packing model (cubes|spheres)")

	return cmd
}

func runVolume(opts *VolumeOptions, formula string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}

	packing := opts.Packing
	if packing == "" {
		packing = opts.Config.Formula.Packing
	}

	c, err := composition.FromFormula(formula, opts.compositionOptions()...)
	if err != nil {
		return fail(opts.RootOptions, cmd, err)
	}
	volume, err := c.CovalentVolume(composition.Packing(packing))
	if err != nil {
		return fail(opts.RootOptions, cmd, err)
	}
	return opts.formatter(cmd).Success(VolumeResult{
		Volume:  volume,
		Packing: packing,
	})
}
