package composition

import (
	"math/big"
	"slices"
	"strings"
)

// AtomicNumbers returns the atomic numbers of the species, ascending.
// Counts are ignored: each species contributes once.
func (c Composition) AtomicNumbers() []int {
	reg := c.registry()
	numbers := make([]int, 0, len(c.counts))
	for s := range c.counts {
		numbers = append(numbers, reg.AtomicNumber(s))
	}
	slices.Sort(numbers)
	return numbers
}

// SpeciesEncoded encodes the species set as sum(Z_i * base^i), where Z_i
// are the atomic numbers in ascending order.
//
// The result is arbitrary precision: at base 256 more than eight species
// already overflow 64 bits.
func (c Composition) SpeciesEncoded(base int64) *big.Int {
	ret := new(big.Int)
	b := big.NewInt(base)
	place := big.NewInt(1)
	term := new(big.Int)
	for _, z := range c.AtomicNumbers() {
		term.Mul(big.NewInt(int64(z)), place)
		ret.Add(ret, term)
		place.Mul(place, b)
	}
	return ret
}

// SpeciesHex returns the base-256 species encoding as lowercase hex with a
// 0x prefix. Each byte is one atomic number; the least significant byte is
// the lightest species.
//
//	YBa2Cu3O7 → "0x38271d08"
//
// The empty composition encodes as "0x0".
func (c Composition) SpeciesHex() string {
	return "0x" + c.SpeciesEncoded(256).Text(16)
}

// DecodeHex recovers the ascending atomic numbers from a SpeciesHex string.
// The 0x prefix is optional.
//
//	DecodeHex("0x38271d08") // [8 29 39 56]
func DecodeHex(s string) ([]int, error) {
	digits := strings.TrimSpace(s)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}

	num, ok := new(big.Int).SetString(digits, 16)
	if digits == "" || !ok || num.Sign() < 0 || strings.ContainsAny(digits, "+-_") {
		return nil, &InvalidArgumentError{
			Code:     ErrCodeInvalidHex,
			Argument: "species hex",
			Value:    s,
		}
	}

	ret := []int{}
	base := big.NewInt(256)
	digit := new(big.Int)
	for num.Sign() > 0 {
		num.DivMod(num, base, digit)
		ret = append(ret, int(digit.Int64()))
	}
	return ret, nil
}
