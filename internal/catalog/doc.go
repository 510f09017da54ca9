// Package catalog provides a SQLite-backed index of named compositions.
//
// Each entry maps a unique label to a Composition together with the
// derived keys callers search by:
//   - id: content-addressed identity of the exact counts
//   - formula: alphabetical reduced formula (ClNa for Na2Cl2)
//   - species_hex / species_key: the species set, counts ignored
//
// # Determinism
//
// All list queries order by formula, then label (COLLATE BINARY), so two
// catalogs with the same contents return identical results.
//
// # Trust boundary
//
// Rows are rebuilt from the stored canonical JSON through
// composition.FromCanonical, so a row edited outside this package is
// validated again before it is returned.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package catalog
