package composition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chemcomp/internal/periodic"
)

func mustFormula(t *testing.T, formula string) Composition {
	t.Helper()
	c, err := FromFormula(formula)
	require.NoError(t, err)
	return c
}

func TestFromFormula(t *testing.T) {
	c := mustFormula(t, "Ba2Cu3O7Y")

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 13, c.NAtoms())
	assert.Equal(t, 2, c.Count("Ba"))
	assert.Equal(t, 7, c.Count("O"))
	assert.Equal(t, []string{"Ba", "Cu", "O", "Y"}, c.Species())
	assert.Equal(t, []int{2, 3, 7, 1}, c.Values())
}

func TestFromFormulaUnicode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"H₂O", "H2O"},
		{"ＮａＣｌ", "NaCl"},
		{"C₆H₁₂O₆", "C6H12O6"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.True(t, mustFormula(t, tt.input).Equal(mustFormula(t, tt.expected)))
		})
	}
}

func TestFromFormulaUnknownSymbol(t *testing.T) {
	_, err := FromFormula("Xx2O")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrCodeUnknownSymbol, ve.Code)
	assert.Equal(t, "Xx", ve.Species)
}

func TestFromFormulaEmpty(t *testing.T) {
	c := mustFormula(t, "")

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.NAtoms())
	assert.Empty(t, c.Species())
	assert.Empty(t, c.Symbols())

	_, ok := c.GCD()
	assert.False(t, ok)
}

func TestFromMap(t *testing.T) {
	input := map[string]int{"Ba": 2, "Cu": 3, "O": 7, "Y": 1}
	c, err := FromMap(input)
	require.NoError(t, err)
	assert.Equal(t, "Ba2Cu3O7Y", c.Formula())

	// Input is copied
	input["Ba"] = 100
	assert.Equal(t, 2, c.Count("Ba"))
}

func TestFromMapValidation(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]int
		code  ValidationErrorCode
	}{
		{"unknown symbol", map[string]int{"H": 2, "Qq": 1}, ErrCodeUnknownSymbol},
		{"lowercase symbol", map[string]int{"h": 2}, ErrCodeUnknownSymbol},
		{"negative count", map[string]int{"H": -1}, ErrCodeNegativeCount},
		{"total overflows", map[string]int{"H": math.MaxInt, "O": 1}, ErrCodeCountOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromMap(tt.input)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			assert.Equal(t, 0, c.Len(), "no partial construction")
		})
	}
}

func TestFromMapZeroCountAllowed(t *testing.T) {
	c, err := FromMap(map[string]int{"O": 0})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.NAtoms())
	assert.True(t, c.Contains("O"))
}

func TestFromMapNil(t *testing.T) {
	c, err := FromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.NotNil(t, c.Map())
}

func TestFromComposition(t *testing.T) {
	orig := mustFormula(t, "Ba2Cu3O7Y")
	cp := FromComposition(orig)

	assert.Equal(t, 4, cp.Len())
	assert.True(t, cp.Equal(orig))

	// Zero value copies to an empty composition
	assert.Equal(t, 0, FromComposition(Composition{}).Len())
}

func TestFromSymbols(t *testing.T) {
	c, err := FromSymbols([]string{"O", "H", "O"})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 2, c.Count("O"))
	assert.Equal(t, 1, c.Count("H"))

	_, err = FromSymbols([]string{"O", "Zz"})
	assert.True(t, IsValidationError(err))
}

func TestFromFormulaUnits(t *testing.T) {
	c, err := FromFormulaUnits("H2O", 3)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Count("H"))
	assert.Equal(t, 3, c.Count("O"))
	assert.Equal(t, "H2O", c.Formula())

	// Repeated species accumulate on this path
	c, err = FromFormulaUnits("OHO", 2)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Count("O"))
	assert.Equal(t, 2, c.Count("H"))

	_, err = FromFormulaUnits("Abcd2", 1)
	assert.True(t, IsValidationError(err))
}

func TestFromFormulaCountOverflow(t *testing.T) {
	_, err := FromFormula("H9223372036854775807O")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ErrCodeCountOverflow, ve.Code)

	// A single saturated count still fits
	c, err := FromFormula("H99999999999999999999")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, c.NAtoms())
	gcd, ok := c.GCD()
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, gcd)
}

func TestFromFormulaUnitsCountOverflow(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		nunits  int
	}{
		{"units multiply past int", "H9223372036854775807", 2},
		{"repeats add past int", "H9223372036854775807H", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromFormulaUnits(tt.formula, tt.nunits)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ErrCodeCountOverflow, ve.Code)
			assert.Equal(t, "H", ve.Species)
		})
	}

	c, err := FromFormulaUnits("H0O", 2)
	require.NoError(t, err)
	assert.False(t, c.Contains("H"))
	assert.Equal(t, 2, c.Count("O"))
}

func TestCountUnknownSymbol(t *testing.T) {
	c := mustFormula(t, "H2")

	assert.Equal(t, 2, c.Count("H"))
	assert.Equal(t, 0, c.Count("He"))
	assert.Equal(t, 0, c.Count("not a symbol"))
	assert.False(t, c.Contains("He"))
	assert.True(t, c.Contains("H"))
}

func TestSymbols(t *testing.T) {
	c := mustFormula(t, "O2H")
	assert.Equal(t, []string{"H", "O", "O"}, c.Symbols())
}

func TestMapReturnsCopy(t *testing.T) {
	c := mustFormula(t, "NaCl")
	m := c.Map()
	m["Na"] = 42
	m["K"] = 1

	assert.Equal(t, 1, c.Count("Na"))
	assert.False(t, c.Contains("K"))
}

func TestGCD(t *testing.T) {
	tests := []struct {
		formula string
		gcd     int
	}{
		{"NaCl", 1},
		{"Na2Cl2", 2},
		{"C5H10", 5},
		{"H", 1},
		{"O12", 12},
		{"Fe6O9", 3},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			gcd, ok := mustFormula(t, tt.formula).GCD()
			require.True(t, ok)
			assert.Equal(t, tt.gcd, gcd)
		})
	}
}

func TestGCDZeroAtoms(t *testing.T) {
	_, ok := Empty().GCD()
	assert.False(t, ok)

	_, ok = Composition{}.GCD()
	assert.False(t, ok)

	c, err := FromMap(map[string]int{"O": 0})
	require.NoError(t, err)
	_, ok = c.GCD()
	assert.False(t, ok)
}

func TestTotalAtomsIsSumOfValues(t *testing.T) {
	for _, f := range []string{"", "H", "Ba2Cu3O7Y", "C6H12O6", "UutUupUusUuo"} {
		c := mustFormula(t, f)
		sum := 0
		for _, v := range c.Values() {
			sum += v
		}
		assert.Equal(t, sum, c.NAtoms(), f)
		assert.Len(t, c.Symbols(), c.NAtoms(), f)
	}
}

func TestEqual(t *testing.T) {
	a := mustFormula(t, "YBa2Cu3O7")
	b := mustFormula(t, "Ba2Cu3O7Y")
	c := mustFormula(t, "Ba4Cu6O14Y2")

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.True(t, Empty().Equal(Composition{}))
}

func TestSizeIndependentOfInsertionOrder(t *testing.T) {
	a, err := FromSymbols([]string{"O", "H", "O", "Na"})
	require.NoError(t, err)
	b, err := FromSymbols([]string{"Na", "O", "O", "H"})
	require.NoError(t, err)

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, a.Len(), b.Len())
	assert.True(t, a.Equal(b))
}

func TestString(t *testing.T) {
	assert.Equal(t, "ClNa", mustFormula(t, "Na2Cl2").String())
	assert.Equal(t, "", Empty().String())
}

func TestSummary(t *testing.T) {
	c := mustFormula(t, "Cu3Ba2")
	assert.Equal(t, "  Ba:    2    Cu:    3  ", c.Summary())
	assert.Equal(t, "", Empty().Summary())
}

func TestWithRegistry(t *testing.T) {
	radius := 1.0
	table, err := periodic.NewTable([]periodic.Element{
		{Symbol: "Abc", Number: 200, CovalentRadius: &radius},
		{Symbol: "H", Number: 1},
	})
	require.NoError(t, err)

	c, err := FromFormula("Abc2H", WithRegistry(table))
	require.NoError(t, err)
	assert.Equal(t, "Abc2H", c.Formula())
	assert.Equal(t, []int{1, 200}, c.AtomicNumbers())

	// O is not in the custom table
	_, err = FromFormula("H2O", WithRegistry(table))
	assert.True(t, IsValidationError(err))

	// Abc is not in the default table
	_, err = FromFormula("Abc2H")
	assert.True(t, IsValidationError(err))

	// Copies keep the registry
	assert.Equal(t, []int{1, 200}, FromComposition(c).AtomicNumbers())
}

func TestErrorMessages(t *testing.T) {
	_, err := FromMap(map[string]int{"Qq": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_SYMBOL")
	assert.Contains(t, err.Error(), `"Qq"`)

	_, err = Empty().CovalentVolume("hexagonal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"hexagonal"`)
	assert.False(t, IsValidationError(err))
}

func mustTable(t *testing.T, symbols ...string) *periodic.Table {
	t.Helper()
	elems := make([]periodic.Element, len(symbols))
	for i, s := range symbols {
		elems[i] = periodic.Element{Symbol: s, Number: i + 1}
	}
	table, err := periodic.NewTable(elems)
	require.NoError(t, err)
	return table
}
