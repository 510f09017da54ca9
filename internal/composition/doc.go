// Package composition models chemical composition: the species present in a
// finite or periodic structure and how many atoms of each.
//
// A Composition carries no geometry or connectivity. It is built once from a
// formula string, a symbol→count map, another Composition, or a flat list of
// symbols, and never changes afterwards. Every derived value (reduced copy,
// sorted formula, species encoding, covalent volume) is computed on demand
// from the stored counts.
//
// # Formula grammar
//
// ParseFormula is a strict scanner: an uppercase letter starts a species,
// extended greedily by at most two lowercase letters, followed by an
// optional run of decimal digits (absent means 1). Anything else is skipped.
// A species that appears twice keeps the LAST count ("H2H3" gives H:3).
//
// FormulaToList is a separate, regex-based expansion used to generate
// replicated symbol lists; it accepts symbols of any length.
//
// # Canonical forms
//
//   - Formula(): alphabetical, reduced by the count GCD ("Na2Cl2" → "ClNa")
//   - SortedFormula(order, reduced): alpha, electroneg or hill ordering
//   - SpeciesHex(): one byte per species, smallest atomic number first
//   - MarshalCanonical(): sorted-key JSON, the only form used for hashing
//
// # Errors
//
// Construction fails with *ValidationError. CovalentVolume, ParseOrder and
// DecodeHex fail with *InvalidArgumentError. Every other operation is total.
//
// A constructed Composition is safe for concurrent read-only use.
package composition
