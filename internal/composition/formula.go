package composition

import (
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Order selects how species are sorted in a rendered formula.
type Order string

const (
	// OrderAlpha sorts species by symbol.
	OrderAlpha Order = "alpha"

	// OrderElectroneg sorts species by ascending electronegativity.
	// Species without a value sort first; ties fall back to symbol order.
	OrderElectroneg Order = "electroneg"

	// OrderHill puts C first, then H, then the rest alphabetically.
	OrderHill Order = "hill"
)

// ValidOrders lists the accepted Order values.
var ValidOrders = []Order{OrderAlpha, OrderElectroneg, OrderHill}

// ParseOrder converts s (case-insensitive) to an Order.
func ParseOrder(s string) (Order, error) {
	o := Order(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(ValidOrders, o) {
		return o, nil
	}
	return "", &InvalidArgumentError{
		Code:     ErrCodeInvalidOrder,
		Argument: "order",
		Value:    s,
	}
}

// Formula returns the alphabetical, GCD-reduced formula.
//
//	"Ba2Cu3O7Y", "ClNa" (from Na2Cl2)
func (c Composition) Formula() string {
	return c.SortedFormula(OrderAlpha, true)
}

// SortedFormula renders the formula with species in the given order.
// If reduced is true, counts are first divided by their GCD.
// A count of 1 renders as the bare symbol. An unrecognized order is
// treated as OrderAlpha.
func (c Composition) SortedFormula(order Order, reduced bool) string {
	comp := c
	if reduced {
		comp = c.Reduced()
	}

	var b strings.Builder
	for _, s := range comp.orderedSpecies(order) {
		b.WriteString(s)
		if n := comp.counts[s]; n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

// Reduced returns a fresh composition with every count divided by the GCD.
// When the GCD is 1 or the composition is empty the copy has equal counts.
func (c Composition) Reduced() Composition {
	out := FromComposition(c)
	gcd, ok := c.GCD()
	if !ok || gcd <= 1 {
		return out
	}
	for s := range out.counts {
		out.counts[s] /= gcd
	}
	return out
}

// orderedSpecies returns the species sorted for rendering.
func (c Composition) orderedSpecies(order Order) []string {
	species := slices.Sorted(maps.Keys(c.counts))

	switch order {
	case OrderElectroneg:
		reg := c.registry()
		key := func(s string) float64 {
			if en, ok := reg.Electronegativity(s); ok {
				return en
			}
			return -1
		}
		sort.SliceStable(species, func(i, j int) bool {
			return key(species[i]) < key(species[j])
		})
		return species

	case OrderHill:
		// H is hoisted even without C: SO4H2 renders H2O4S.
		ret := make([]string, 0, len(species))
		for _, first := range []string{"C", "H"} {
			if _, ok := c.counts[first]; ok {
				ret = append(ret, first)
			}
		}
		for _, s := range species {
			if s != "C" && s != "H" {
				ret = append(ret, s)
			}
		}
		return ret

	default:
		return species
	}
}
