package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/tablecore/internal/compiler"
	"github.com/roach88/tablecore/internal/query"
	"github.com/roach88/tablecore/internal/records"
	"github.com/roach88/tablecore/internal/table"
)

// Harness is the scenario execution engine. It owns one table built for
// the scenario being run.
type Harness struct {
	table  *table.Table[records.Record]
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger passed to the table and used for step logs.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Compile the definition and select the scenario's table
// 2. Load the records and build the table
// 3. Apply each step, recording a trace event and checking its expect clause
// 4. Evaluate assertions and capture the final page
//
// A failed expectation or assertion is reported in the result; errors are
// returned for scenarios that cannot be executed at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	specs, err := compiler.CompileFile(scenario.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to compile definition: %w", err)
	}
	spec, err := compiler.Lookup(specs, scenario.Table)
	if err != nil {
		return nil, err
	}
	data, err := records.Load(scenario.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	h.table, err = spec.Build(data, h.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build table: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.apply(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op(), err)
		}
		ev := h.snapshot(i, step.Op())
		result.AddStepTrace(ev)
		for _, msg := range checkStep(ev, step.Expect) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, ev.Op, msg))
		}
		h.logger.Info("step applied",
			"scenario", scenario.Name,
			"step", i,
			"op", ev.Op,
			"row_count", ev.RowCount,
			"page_index", ev.PageIndex,
		)
	}

	for _, msg := range EvaluateAssertions(h.table, result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}
	result.Page = PageRows(h.table)
	result.State = h.table.GetState()
	return result, nil
}

// apply performs the step's one operation on the table.
func (h *Harness) apply(step Step) error {
	t := h.table
	switch step.Op() {
	case OpFilter:
		return query.Apply(t, step.Filter, "")
	case OpOrderBy:
		return query.Apply(t, "", step.OrderBy)
	case OpGlobal:
		t.SetGlobalFilter(table.Replace[any](*step.Global))
	case OpGroupBy:
		t.SetGrouping(table.Replace(table.GroupingState(step.GroupBy)))
	case OpExpand:
		if step.Expand.All {
			t.SetExpanded(table.Replace(table.ExpandAll()))
		} else {
			t.SetExpanded(table.Replace(table.ExpandRows(step.Expand.IDs...)))
		}
	case OpPageSize:
		t.SetPageSize(table.Replace(*step.PageSize))
	case OpPage:
		t.SetPageIndex(table.Replace(*step.Page))
	case OpReset:
		t.Reset()
	default:
		return errors.New("step must have exactly one operation")
	}
	return nil
}

// snapshot reads the page the table shows now.
func (h *Harness) snapshot(step int, op string) TraceEvent {
	t := h.table
	rows := t.GetRowModel().Rows
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return TraceEvent{
		Step:      step,
		Op:        op,
		RowCount:  t.GetRowCount(),
		PageIndex: t.GetState().Pagination.PageIndex,
		PageCount: t.GetPageCount(),
		RowIDs:    ids,
	}
}

// checkStep compares a trace event against a step's expect clause.
func checkStep(ev TraceEvent, expect *StepExpect) []string {
	if expect == nil {
		return nil
	}
	var errs []string
	if expect.RowCount != nil && *expect.RowCount != ev.RowCount {
		errs = append(errs, fmt.Sprintf("expected rowCount %d, got %d", *expect.RowCount, ev.RowCount))
	}
	if expect.PageCount != nil && *expect.PageCount != ev.PageCount {
		errs = append(errs, fmt.Sprintf("expected pageCount %d, got %d", *expect.PageCount, ev.PageCount))
	}
	if expect.RowIDs != nil && !slices.Equal(expect.RowIDs, ev.RowIDs) {
		errs = append(errs, fmt.Sprintf("expected rowIds %v, got %v", expect.RowIDs, ev.RowIDs))
	}
	return errs
}

// PageRows captures the current page with every accessor column's value.
func PageRows(t *table.Table[records.Record]) []PageRow {
	var columns []*table.Column[records.Record]
	for _, c := range t.GetAllLeafColumns() {
		if c.HasAccessor() {
			columns = append(columns, c)
		}
	}

	rows := t.GetRowModel().Rows
	out := make([]PageRow, len(rows))
	for i, r := range rows {
		values := make(map[string]any, len(columns))
		for _, c := range columns {
			values[c.ID] = r.GetValue(c.ID)
		}
		out[i] = PageRow{
			ID:               r.ID,
			Depth:            r.Depth,
			Values:           values,
			GroupingColumnID: r.GroupingColumnID,
			GroupingValue:    r.GroupingValue,
			LeafCount:        len(r.LeafRows),
		}
	}
	return out
}
