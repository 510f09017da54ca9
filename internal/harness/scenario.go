package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Elements is an optional element table path (.yaml or .cue).
	// Relative paths are resolved against the scenario file location.
	// When empty the built-in periodic table is used.
	Elements string `yaml:"elements,omitempty"`

	// Setup lists compositions stored in the catalog before the flow runs.
	// Setup entries are assumed to be valid.
	Setup []SetupEntry `yaml:"setup,omitempty"`

	// Flow contains the operations under test, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and catalog state.
	Assertions []Assertion `yaml:"assertions"`
}

// SetupEntry stores a formula under a label before the flow.
type SetupEntry struct {
	Label   string `yaml:"label"`
	Formula string `yaml:"formula"`
}

// FlowStep is one operation with its optional expected outcome.
type FlowStep struct {
	// Op is the operation name (see package docs).
	Op string `yaml:"op"`

	// Input is the formula, species hex or search term for the op.
	Input string `yaml:"input"`

	// Args holds op-specific arguments (order, reduced, packing, units, label).
	Args map[string]any `yaml:"args,omitempty"`

	// Expect is the expected outcome. If nil the step must only not fail.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Case is one of CaseOK, CaseValidationError, CaseInvalidArgument or
	// CaseError (any other failure, such as a catalog label conflict).
	Case string `yaml:"case"`

	// Result is compared against the step result after both are normalized
	// through JSON. Numbers compare with a small tolerance.
	// If nil, only the case is validated.
	Result any `yaml:"result,omitempty"`
}

// Assertion validates trace or final catalog state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Input optionally narrows trace_contains to one input.
	Input string `yaml:"input,omitempty"`

	// Ops is the expected order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Table is the state table (final_state). Only "catalog" exists.
	Table string `yaml:"table,omitempty"`

	// Where selects the entry (final_state). Only "label" is supported.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds the expected entry fields (final_state), subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Step outcome cases.
const (
	CaseOK              = "ok"
	CaseValidationError = "validation_error"
	CaseInvalidArgument = "invalid_argument"
	CaseError           = "error"
)

// Operation names.
const (
	OpParse       = "parse"
	OpCompose     = "compose"
	OpFormula     = "formula"
	OpHex         = "hex"
	OpDecode      = "decode"
	OpVolume      = "volume"
	OpExpand      = "expand"
	OpPut         = "put"
	OpFindSpecies = "find_species"
	OpFindFormula = "find_formula"
)

// ValidOps lists the operations a flow step may use.
var ValidOps = []string{
	OpParse, OpCompose, OpFormula, OpHex, OpDecode,
	OpVolume, OpExpand, OpPut, OpFindSpecies, OpFindFormula,
}

var validCases = []string{CaseOK, CaseValidationError, CaseInvalidArgument, CaseError}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	// Strict parsing: unknown fields are rejected to catch typos
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if s.Elements != "" && !filepath.IsAbs(s.Elements) {
		s.Elements = filepath.Join(filepath.Dir(path), s.Elements)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that the scenario is well formed.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Elements != "" {
		if _, err := os.Stat(s.Elements); os.IsNotExist(err) {
			return fmt.Errorf("element table not found: %s", s.Elements)
		}
	}

	for i, e := range s.Setup {
		if e.Label == "" {
			return fmt.Errorf("setup[%d]: label is required", i)
		}
		if e.Formula == "" {
			return fmt.Errorf("setup[%d]: formula is required", i)
		}
	}

	for i, step := range s.Flow {
		if !slices.Contains(ValidOps, step.Op) {
			return fmt.Errorf("flow[%d]: unknown op %q", i, step.Op)
		}
		if step.Op == OpPut && argString(step.Args, "label", "") == "" {
			return fmt.Errorf("flow[%d]: put requires args.label", i)
		}
		if step.Expect != nil && !slices.Contains(validCases, step.Expect.Case) {
			return fmt.Errorf("flow[%d].expect: case must be one of %v, got %q", i, validCases, step.Expect.Case)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table != "catalog" {
			return fmt.Errorf("assertions[%d]: final_state table must be \"catalog\", got %q", index, a.Table)
		}
		if _, ok := a.Where["label"]; !ok {
			return fmt.Errorf("assertions[%d]: where.label is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
