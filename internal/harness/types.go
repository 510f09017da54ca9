package harness

// Trace event types.
const (
	EventStep    = "step"
	EventOutcome = "outcome"
)

// TraceEvent records either a step (op and input) or its outcome
// (case and result). Every step is followed by exactly one outcome.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	Type   string         `json:"type"`
	Op     string         `json:"op,omitempty"`
	Input  string         `json:"input,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
	Case   string         `json:"case,omitempty"`
	Result any            `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains the steps and outcomes in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace appends a step event.
func (r *Result) AddStepTrace(op, input string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:   seq,
		Type:  EventStep,
		Op:    op,
		Input: input,
		Args:  args,
	})
}

// AddOutcomeTrace appends an outcome event.
func (r *Result) AddOutcomeTrace(outcome string, result any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:    seq,
		Type:   EventOutcome,
		Case:   outcome,
		Result: result,
	})
}
