// Package harness runs composition conformance scenarios.
//
// A scenario is a YAML file describing a short flow of composition
// operations, the outcome each step must produce, and assertions over the
// resulting trace and the final catalog contents. Scenarios are the
// executable form of the formula grammar and canonicalization rules: every
// documented edge case can be pinned in a file instead of in Go code.
//
// # Scenario Format
//
//	name: ybco
//	description: "YBa2Cu3O7 renders and encodes canonically"
//	elements: tables/mini.yaml   # optional, relative to the scenario file
//	setup:
//	  - label: ybco
//	    formula: YBa2Cu3O7
//	flow:
//	  - op: formula
//	    input: YBa2Cu3O7
//	    args: { order: hill, reduced: false }
//	    expect:
//	      case: ok
//	      result: Ba2Cu3O7Y
//	assertions:
//	  - type: trace_contains
//	    op: formula
//	  - type: final_state
//	    table: catalog
//	    where: { label: ybco }
//	    expect: { formula: Ba2Cu3O7Y }
//
// # Operations
//
//   - parse: strict scan, result is the raw species→count map (never fails)
//   - compose: validated construction, result is the canonical count map
//   - formula: rendered formula (args: order, reduced)
//   - hex: species hex encoding
//   - decode: atomic numbers of a species hex
//   - volume: covalent volume (args: packing)
//   - expand: one symbol per atom (args: units)
//   - put: store in the catalog (args: label)
//   - find_species / find_formula: catalog labels matching the input
//
// Each step completes with case "ok", "validation_error",
// "invalid_argument" or "error".
//
// # Assertion Types
//
//   - trace_contains: an op appears in the trace, optionally with an input
//   - trace_order: ops appear in the given order
//   - trace_count: an op appears exactly N times
//   - final_state: a catalog entry has the expected fields
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory catalog and a logical sequence counter,
// so the trace of a scenario is byte-for-byte reproducible and can be
// compared against a golden file.
package harness
