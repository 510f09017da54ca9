// Package cli implements the chemcomp command-line interface.
//
// Commands:
//
//	parse    summarize a formula (counts, natoms, GCD, species hex)
//	formula  render a canonical formula (alpha, electroneg or Hill order)
//	expand   list one symbol per atom for N formula units
//	hex      encode the species set
//	decode   recover atomic numbers from a species hex
//	volume   covalent volume estimate
//	catalog  add, get, find, list and delete named compositions
//	test     run YAML scenarios through the harness
//
// Every command accepts --format text|json. JSON output is wrapped as
// {"status":"ok","data":...} or {"status":"error","error":{...}}.
//
// Configuration is read by LoadConfig from an optional file (--config) and
// CHEMCOMP_* environment variables; flags take precedence.
package cli
