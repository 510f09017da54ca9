package periodic

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
)

// Registry answers the element lookups a composition needs.
//
// Implementations must be safe for concurrent read-only use.
type Registry interface {
	// IsValidSymbol reports whether symbol names a known element.
	IsValidSymbol(symbol string) bool

	// Electronegativity returns the Pauling electronegativity of symbol.
	// ok is false when the element has no tabulated value.
	Electronegativity(symbol string) (value float64, ok bool)

	// AtomicNumber returns the atomic number of symbol, or 0 if unknown.
	AtomicNumber(symbol string) int

	// CovalentRadius returns the covalent radius in Angstrom, or 0 when
	// the element is unknown or has no tabulated radius.
	CovalentRadius(symbol string) float64
}

// Element is one row of an element table.
type Element struct {
	Symbol            string   `json:"symbol" yaml:"symbol"`
	Number            int      `json:"number" yaml:"number"`
	Name              string   `json:"name,omitempty" yaml:"name,omitempty"`
	Electronegativity *float64 `json:"electronegativity,omitempty" yaml:"electronegativity,omitempty"`
	CovalentRadius    *float64 `json:"covalent_radius,omitempty" yaml:"covalent_radius,omitempty"`
}

// Table is an immutable Registry backed by a validated list of elements.
type Table struct {
	elements []Element
	bySymbol map[string]Element
	byNumber map[int]string
}

var _ Registry = (*Table)(nil)

//go:embed elements.yaml
var defaultTableYAML []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in element table.
// It panics if the embedded data fails validation, which is a build defect.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := parseYAMLTable(defaultTableYAML, "elements.yaml")
		if err != nil {
			panic(fmt.Sprintf("periodic: embedded element table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// NewTable validates elements against the element schema and builds a Table.
// The input slice is copied.
func NewTable(elements []Element) (*Table, error) {
	if err := validateElements(elements, ""); err != nil {
		return nil, err
	}
	return buildTable(elements, "")
}

// buildTable indexes already schema-checked elements, rejecting duplicates.
func buildTable(elements []Element, path string) (*Table, error) {
	t := &Table{
		elements: make([]Element, len(elements)),
		bySymbol: make(map[string]Element, len(elements)),
		byNumber: make(map[int]string, len(elements)),
	}
	copy(t.elements, elements)

	for _, e := range t.elements {
		if _, dup := t.bySymbol[e.Symbol]; dup {
			return nil, &TableError{
				Code:    ErrCodeTableDuplicate,
				Message: fmt.Sprintf("symbol %q appears more than once", e.Symbol),
				Path:    path,
			}
		}
		t.bySymbol[e.Symbol] = e
		if _, taken := t.byNumber[e.Number]; !taken {
			t.byNumber[e.Number] = e.Symbol
		}
	}

	sort.SliceStable(t.elements, func(i, j int) bool {
		return t.elements[i].Number < t.elements[j].Number
	})
	return t, nil
}

// IsValidSymbol implements Registry.
func (t *Table) IsValidSymbol(symbol string) bool {
	_, ok := t.bySymbol[symbol]
	return ok
}

// Electronegativity implements Registry.
func (t *Table) Electronegativity(symbol string) (float64, bool) {
	e, ok := t.bySymbol[symbol]
	if !ok || e.Electronegativity == nil {
		return 0, false
	}
	return *e.Electronegativity, true
}

// AtomicNumber implements Registry.
func (t *Table) AtomicNumber(symbol string) int {
	return t.bySymbol[symbol].Number
}

// CovalentRadius implements Registry.
func (t *Table) CovalentRadius(symbol string) float64 {
	e, ok := t.bySymbol[symbol]
	if !ok || e.CovalentRadius == nil {
		return 0
	}
	return *e.CovalentRadius
}

// Lookup returns the full element row for symbol.
func (t *Table) Lookup(symbol string) (Element, bool) {
	e, ok := t.bySymbol[symbol]
	return e, ok
}

// SymbolOf returns the symbol with the given atomic number. When a table
// assigns one number to several symbols the first listed wins.
func (t *Table) SymbolOf(number int) (string, bool) {
	s, ok := t.byNumber[number]
	return s, ok
}

// Elements returns a copy of the table ordered by atomic number.
func (t *Table) Elements() []Element {
	out := make([]Element, len(t.elements))
	copy(out, t.elements)
	return out
}

// Len returns the number of elements in the table.
func (t *Table) Len() int {
	return len(t.elements)
}
