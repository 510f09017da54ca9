package composition

import (
	"math"
	"regexp"
	"strconv"
)

// ParseFormula scans a formula into a species→count map.
//
// Scanning is left to right. An uppercase ASCII letter starts a species
// token, extended by up to two lowercase letters (3 chars, then 2, then 1).
// The digits that immediately follow form the count; no digits means 1.
// Characters that cannot start a token are skipped, so malformed input
// never fails, it just contributes nothing.
//
// A repeated species overwrites the earlier count rather than adding to it:
//
//	ParseFormula("H2H3") // map[H:3]
//
// The returned map is never nil.
func ParseFormula(text string) map[string]int {
	ret := make(map[string]int)
	i := 0
	for i < len(text) {
		if !isUpper(text[i]) {
			i++
			continue
		}

		// Species: uppercase plus at most two lowercase letters
		end := i + 1
		for end < len(text) && end-i < 3 && isLower(text[end]) {
			end++
		}
		specie := text[i:end]

		// Count: consecutive digits right after the species
		digitsEnd := end
		for digitsEnd < len(text) && isDigit(text[digitsEnd]) {
			digitsEnd++
		}

		ret[specie] = parseCount(text[end:digitsEnd])
		i = digitsEnd
	}
	return ret
}

var (
	// formulaPiece matches a species with its trailing digits.
	formulaPiece = regexp.MustCompile(`[A-Z][a-z0-9]*`)
	// pieceParts splits a piece into symbol and count.
	pieceParts = regexp.MustCompile(`([A-Za-z]+)([0-9]*)`)
)

// FormulaToList expands a formula into one symbol per atom, repeated for
// nunits formula units, in the order the species appear.
//
// Unlike ParseFormula, symbols are not limited to three characters and
// repeated species are all expanded:
//
//	FormulaToList("NaCl", 1)      // [Na Cl]
//	FormulaToList("H2O", 2)       // [H H H H O O]
//
// nunits below 1 yields an empty list.
func FormulaToList(formula string, nunits int) []string {
	ret := []string{}
	if nunits < 1 {
		return ret
	}
	for _, piece := range formulaPiece.FindAllString(formula, -1) {
		m := pieceParts.FindStringSubmatch(piece)
		if m == nil {
			continue
		}
		n := expandCount(parseCount(m[2]), nunits)
		for j := 0; j < n; j++ {
			ret = append(ret, m[1])
		}
	}
	return ret
}

// tallyUnits counts the species of nunits formula units without building
// the expanded list. Zero counts leave a species out, as in FormulaToList.
func tallyUnits(formula string, nunits int) (map[string]int, error) {
	counts := map[string]int{}
	if nunits < 1 {
		return counts, nil
	}
	for _, piece := range formulaPiece.FindAllString(formula, -1) {
		m := pieceParts.FindStringSubmatch(piece)
		if m == nil {
			continue
		}
		n, ok := mulCount(parseCount(m[2]), nunits)
		if ok {
			n, ok = addCount(counts[m[1]], n)
		}
		if !ok {
			return nil, newCountOverflowError(m[1])
		}
		if n > 0 {
			counts[m[1]] = n
		}
	}
	return counts, nil
}

// expandCount is n*nunits, saturating at math.MaxInt like parseCount.
func expandCount(n, nunits int) int {
	p, ok := mulCount(n, nunits)
	if !ok {
		return math.MaxInt
	}
	return p
}

// addCount adds two non-negative counts; ok is false on overflow.
func addCount(a, b int) (sum int, ok bool) {
	sum = a + b
	return sum, sum >= a
}

// mulCount multiplies two non-negative counts; ok is false on overflow.
func mulCount(a, b int) (product int, ok bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product = a * b
	return product, product/b == a
}

// parseCount converts a digit run to a count. Empty means 1.
// Values beyond the int range saturate at math.MaxInt.
func parseCount(digits string) int {
	if digits == "" {
		return 1
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
