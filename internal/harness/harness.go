package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/chemcomp/internal/catalog"
	"github.com/roach88/chemcomp/internal/composition"
	"github.com/roach88/chemcomp/internal/periodic"
)

// Harness executes one scenario against a fresh catalog.
type Harness struct {
	catalog  *catalog.Catalog
	registry periodic.Registry
	logger   *slog.Logger
	seq      int64
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the element table (scenario.Elements or the built-in table)
//  2. Open a fresh in-memory catalog
//  3. Store the setup entries
//  4. Execute flow steps, checking expect clauses
//  5. Evaluate assertions against the trace and catalog
//
// An error is returned only when the scenario cannot be executed at all;
// failed expectations are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with step-level debug logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	registry, err := loadRegistry(scenario.Elements)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(":memory:", catalog.WithRegistry(registry), catalog.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory catalog: %w", err)
	}
	defer cat.Close()

	h := &Harness{
		catalog:  cat,
		registry: registry,
		logger:   logger,
	}

	ctx := context.Background()
	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		h.executeStep(ctx, i, step, result)
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluateAssertion(ctx, a, result.Trace); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func loadRegistry(path string) (periodic.Registry, error) {
	if path == "" {
		return periodic.Default(), nil
	}
	table, err := periodic.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load element table: %w", err)
	}
	return table, nil
}

func (h *Harness) nextSeq() int64 {
	h.seq++
	return h.seq
}

func (h *Harness) compositionOptions() []composition.Option {
	return []composition.Option{composition.WithRegistry(h.registry)}
}

// executeSetup stores every setup entry. Setup must succeed.
func (h *Harness) executeSetup(ctx context.Context, setup []SetupEntry) error {
	for i, e := range setup {
		c, err := composition.FromFormula(e.Formula, h.compositionOptions()...)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if _, err := h.catalog.Put(ctx, e.Label, c); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

// executeStep runs one flow step, records it in the trace and checks the
// expect clause.
func (h *Harness) executeStep(ctx context.Context, index int, step FlowStep, result *Result) {
	result.AddStepTrace(step.Op, step.Input, step.Args, h.nextSeq())

	value, err := h.apply(ctx, step)
	outcome := caseOf(err)
	if err != nil {
		value = nil
	}
	result.AddOutcomeTrace(outcome, value, h.nextSeq())

	h.logger.Debug("harness step",
		"index", index,
		"op", step.Op,
		"input", step.Input,
		"case", outcome,
	)

	if step.Expect == nil {
		if err != nil {
			result.AddError(fmt.Sprintf("flow[%d]: %s %q failed: %v", index, step.Op, step.Input, err))
		}
		return
	}

	if outcome != step.Expect.Case {
		msg := fmt.Sprintf("flow[%d]: %s %q: expected case %q, got %q", index, step.Op, step.Input, step.Expect.Case, outcome)
		if err != nil {
			msg += fmt.Sprintf(" (%v)", err)
		}
		result.AddError(msg)
		return
	}

	if step.Expect.Result != nil && !matchValue(step.Expect.Result, value) {
		result.AddError(fmt.Sprintf("flow[%d]: %s %q: expected result %s, got %s",
			index, step.Op, step.Input, describe(step.Expect.Result), describe(value)))
	}
}

// apply performs the operation named by step.Op.
func (h *Harness) apply(ctx context.Context, step FlowStep) (any, error) {
	opts := h.compositionOptions()

	switch step.Op {
	case OpParse:
		return composition.ParseFormula(step.Input), nil

	case OpDecode:
		return composition.DecodeHex(step.Input)

	case OpExpand:
		return composition.FormulaToList(step.Input, argInt(step.Args, "units", 1)), nil

	case OpFindSpecies:
		entries, err := h.catalog.FindBySpecies(ctx, step.Input)
		if err != nil {
			return nil, err
		}
		return entryLabels(entries), nil

	case OpFindFormula:
		entries, err := h.catalog.FindByFormula(ctx, step.Input)
		if err != nil {
			return nil, err
		}
		return entryLabels(entries), nil
	}

	// The remaining ops start from a validated composition.
	c, err := composition.FromFormula(step.Input, opts...)
	if err != nil {
		return nil, err
	}

	switch step.Op {
	case OpCompose:
		return c.Map(), nil

	case OpFormula:
		order := composition.OrderAlpha
		if s := argString(step.Args, "order", ""); s != "" {
			order, err = composition.ParseOrder(s)
			if err != nil {
				return nil, err
			}
		}
		return c.SortedFormula(order, argBool(step.Args, "reduced", true)), nil

	case OpHex:
		return c.SpeciesHex(), nil

	case OpVolume:
		packing := composition.Packing(argString(step.Args, "packing", string(composition.PackingCubes)))
		return c.CovalentVolume(packing)

	case OpPut:
		entry, err := h.catalog.Put(ctx, argString(step.Args, "label", ""), c)
		if err != nil {
			return nil, err
		}
		return entry.Formula, nil

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// caseOf classifies an operation error into an outcome case.
func caseOf(err error) string {
	switch {
	case err == nil:
		return CaseOK
	case composition.IsValidationError(err):
		return CaseValidationError
	case composition.IsInvalidArgument(err):
		return CaseInvalidArgument
	default:
		return CaseError
	}
}

func entryLabels(entries []catalog.Entry) []string {
	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}
	return labels
}

func argString(args map[string]any, key, def string) string {
	v, ok := args[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func argBool(args map[string]any, key string, def bool) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return def
	}
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
