package composition

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeciesHex(t *testing.T) {
	tests := []struct {
		formula  string
		expected string
	}{
		{"YBa2Cu3O7", "0x38271d08"},
		{"Ba2Cu3O7Y", "0x38271d08"},
		{"Y2Ba4Cu6O14", "0x38271d08"},
		{"H", "0x1"},
		{"H2O", "0x801"},
		{"NaCl", "0x110b"},
		{"Uuo", "0x76"},
		{"", "0x0"},
	}

	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustFormula(t, tt.formula).SpeciesHex())
		})
	}
}

func TestDecodeHex(t *testing.T) {
	got, err := DecodeHex("0x38271d08")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 29, 39, 56}, got)

	got, err = DecodeHex("38271d08")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 29, 39, 56}, got)

	got, err = DecodeHex("0X38271D08")
	require.NoError(t, err)
	assert.Equal(t, []int{8, 29, 39, 56}, got)

	got, err = DecodeHex("0x0")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeHexInvalid(t *testing.T) {
	for _, input := range []string{"", "0x", "0xzz", "hello", "0x-1", "-0x1", "0x+1", "0x1_0"} {
		t.Run(input, func(t *testing.T) {
			_, err := DecodeHex(input)
			require.Error(t, err)
			assert.True(t, IsInvalidArgument(err))

			var ie *InvalidArgumentError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, ErrCodeInvalidHex, ie.Code)
		})
	}
}

func TestSpeciesHexRoundTrip(t *testing.T) {
	formulas := []string{
		"H",
		"NaCl",
		"Ba2Cu3O7Y",
		"C6H12O6",
		"UutUupUusUuo",
		// Ten species: more than 64 bits at base 256
		"HLiBeBCNOFNaMg",
		"LaCeHfTaWReOsIrPtAuHgTlPbBi",
	}

	for _, f := range formulas {
		t.Run(f, func(t *testing.T) {
			c := mustFormula(t, f)
			got, err := DecodeHex(c.SpeciesHex())
			require.NoError(t, err)
			assert.Equal(t, c.AtomicNumbers(), got)
			assert.Len(t, got, c.Len())
		})
	}
}

func TestAtomicNumbers(t *testing.T) {
	c := mustFormula(t, "YBa2Cu3O7")
	assert.Equal(t, []int{8, 29, 39, 56}, c.AtomicNumbers())
	assert.Empty(t, Empty().AtomicNumbers())
}

func TestSpeciesEncoded(t *testing.T) {
	c := mustFormula(t, "HeH")

	// 1 + 2*10
	assert.Equal(t, big.NewInt(21), c.SpeciesEncoded(10))
	// 1 + 2*256
	assert.Equal(t, big.NewInt(513), c.SpeciesEncoded(256))
	assert.Equal(t, 0, Empty().SpeciesEncoded(256).Sign())
}

func TestSpeciesEncodedLarge(t *testing.T) {
	c := mustFormula(t, "HLiBeBCNOFNaMg")
	enc := c.SpeciesEncoded(256)

	// Ten one-byte slots do not fit in 64 bits
	assert.False(t, enc.IsUint64())
	assert.Equal(t, "0xc0b0908070605040301", c.SpeciesHex())
}
