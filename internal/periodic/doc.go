// Package periodic provides the element reference data consumed by the
// composition package.
//
// The data is exposed through the Registry interface so callers can swap in
// alternate tables (for tests, or for hypothetical elements). This package
// only answers membership and scalar lookups; it holds no per-call state.
//
// Tables come from two sources:
//   - Default(): the built-in table, embedded as elements.yaml
//   - LoadTable(path): a .yaml/.yml or .cue file with the same shape
//
// Every table is unified with the embedded CUE schema (elements.cue) before
// use. Symbols must match ^[A-Z][a-z]{0,2}$ and atomic numbers must fit in
// one byte (1..255), so every table is compatible with the one-byte-per-
// species hex encoding.
//
// A constructed Table is immutable and safe for concurrent use.
package periodic
