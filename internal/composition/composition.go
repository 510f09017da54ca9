package composition

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/chemcomp/internal/periodic"
)

// Composition is an immutable species→count map.
//
// The zero value is the empty composition and uses the default registry.
// Methods never modify the receiver; derived compositions own fresh maps.
type Composition struct {
	counts map[string]int
	reg    periodic.Registry
}

// Option configures composition construction.
type Option func(*options)

type options struct {
	registry periodic.Registry
}

// WithRegistry validates and resolves species against r instead of the
// built-in periodic table.
func WithRegistry(r periodic.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Empty returns a composition with no species.
func Empty(opts ...Option) Composition {
	o := buildOptions(opts)
	return Composition{counts: map[string]int{}, reg: o.registry}
}

// FromFormula parses a formula string and validates the result.
//
// The text is NFKC-normalized first, so subscript digits and fullwidth
// letters read as their ASCII equivalents ("H₂O" is "H2O").
func FromFormula(text string, opts ...Option) (Composition, error) {
	return FromMap(ParseFormula(norm.NFKC.String(text)), opts...)
}

// FromMap validates m and copies it into a new Composition.
// Every key must be a registry symbol and every count non-negative.
func FromMap(m map[string]int, opts ...Option) (Composition, error) {
	o := buildOptions(opts)
	c := Composition{counts: maps.Clone(m), reg: o.registry}
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	if err := c.validate(); err != nil {
		return Composition{}, err
	}
	return c, nil
}

// FromComposition returns an independent copy of other.
func FromComposition(other Composition) Composition {
	counts := maps.Clone(other.counts)
	if counts == nil {
		counts = map[string]int{}
	}
	return Composition{counts: counts, reg: other.reg}
}

// FromSymbols tallies a flat list of symbols; each repeat adds one atom.
//
//	FromSymbols([]string{"O", "H", "O"}) // H:1 O:2
func FromSymbols(symbols []string, opts ...Option) (Composition, error) {
	counts := make(map[string]int, len(symbols))
	for _, s := range symbols {
		counts[s]++
	}
	return FromMap(counts, opts...)
}

// FromFormulaUnits builds the composition of nunits formula units.
// Species are read the way FormulaToList expands them, so repeated species
// in the formula accumulate here ("OHO" x2 gives H:2 O:4). A count that
// does not fit in an int fails with ErrCodeCountOverflow.
func FromFormulaUnits(formula string, nunits int, opts ...Option) (Composition, error) {
	counts, err := tallyUnits(norm.NFKC.String(formula), nunits)
	if err != nil {
		return Composition{}, err
	}
	return FromMap(counts, opts...)
}

// validate checks every species against the registry and keeps the atom
// total within the int range, so NAtoms never wraps.
// Species are visited in sorted order so the reported error is stable.
func (c Composition) validate() error {
	reg := c.registry()
	total := 0
	for _, s := range c.Species() {
		if !reg.IsValidSymbol(s) {
			return newUnknownSymbolError(s)
		}
		n := c.counts[s]
		if n < 0 {
			return newNegativeCountError(s, int64(n))
		}
		var ok bool
		if total, ok = addCount(total, n); !ok {
			return newCountOverflowError(s)
		}
	}
	return nil
}

func (c Composition) registry() periodic.Registry {
	if c.reg == nil {
		return periodic.Default()
	}
	return c.reg
}

// Count returns the number of atoms of symbol, or 0 if absent.
func (c Composition) Count(symbol string) int {
	return c.counts[symbol]
}

// Contains reports whether symbol is one of the species.
func (c Composition) Contains(symbol string) bool {
	_, ok := c.counts[symbol]
	return ok
}

// Len returns the number of distinct species.
func (c Composition) Len() int {
	return len(c.counts)
}

// NAtoms returns the total number of atoms.
func (c Composition) NAtoms() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Species returns the species in alphabetical order.
func (c Composition) Species() []string {
	return slices.Sorted(maps.Keys(c.counts))
}

// Values returns the counts in the same order as Species.
func (c Composition) Values() []int {
	species := c.Species()
	values := make([]int, len(species))
	for i, s := range species {
		values[i] = c.counts[s]
	}
	return values
}

// Symbols returns one entry per atom, sorted alphabetically.
func (c Composition) Symbols() []string {
	ret := make([]string, 0, c.NAtoms())
	for _, s := range c.Species() {
		for j := 0; j < c.counts[s]; j++ {
			ret = append(ret, s)
		}
	}
	return ret
}

// Map returns a copy of the species→count map.
func (c Composition) Map() map[string]int {
	m := maps.Clone(c.counts)
	if m == nil {
		m = map[string]int{}
	}
	return m
}

// GCD returns the greatest common divisor of all counts.
// ok is false when the composition holds no atoms.
func (c Composition) GCD() (gcd int, ok bool) {
	if c.NAtoms() <= 0 {
		return 0, false
	}
	for _, n := range c.counts {
		gcd = gcdInt(gcd, n)
	}
	return gcd, true
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Equal reports whether both compositions hold the same species and counts.
// The registries they were validated against are not compared.
func (c Composition) Equal(other Composition) bool {
	return maps.Equal(c.counts, other.counts)
}

// String returns the default formula (alphabetical, reduced).
func (c Composition) String() string {
	return c.Formula()
}

// Summary renders one column per species, alphabetically:
//
//	"  Ba:    2    Cu:    3  "
func (c Composition) Summary() string {
	var b strings.Builder
	for _, s := range c.Species() {
		fmt.Fprintf(&b, " %3s: %4d  ", s, c.counts[s])
	}
	return b.String()
}
