package harness

import "github.com/roach88/tablecore/internal/table"

// TraceEvent records the page that followed one step.
type TraceEvent struct {
	Step      int      `json:"step"`
	Op        string   `json:"op"`
	RowCount  int      `json:"rowCount"`
	PageIndex int      `json:"pageIndex"`
	PageCount int      `json:"pageCount"`
	RowIDs    []string `json:"rowIds"`
}

// PageRow is one row of the final page.
type PageRow struct {
	ID     string         `json:"id"`
	Depth  int            `json:"depth"`
	Values map[string]any `json:"values"`

	// Set on group rows only.
	GroupingColumnID string `json:"groupingColumnId,omitempty"`
	GroupingValue    any    `json:"groupingValue,omitempty"`
	LeafCount        int    `json:"leafCount,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Page is the final page of rows.
	Page []PageRow `json:"page"`

	// State is the table state after the last step.
	State table.State `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Page:   []PageRow{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace appends the trace event for a step.
func (r *Result) AddStepTrace(ev TraceEvent) {
	if ev.RowIDs == nil {
		ev.RowIDs = []string{}
	}
	r.Trace = append(r.Trace, ev)
}
