package harness

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tablecore/internal/canon"
	"github.com/roach88/tablecore/internal/records"
	"github.com/roach88/tablecore/internal/table"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s rows=%d page=%d/%d %v\n",
				ev.Step, ev.Op, ev.RowCount, ev.PageIndex, ev.PageCount, ev.RowIDs)
		}
	}
	return buf.String()
}

// assertRowIDs checks the current page lists exactly the expected rows.
func assertRowIDs(t *table.Table[records.Record], trace []TraceEvent, assertion Assertion) error {
	rows := t.GetRowModel().Rows
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	if slices.Equal(ids, assertion.Rows) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowIDs,
		Expected: fmt.Sprintf("%v", assertion.Rows),
		Actual:   fmt.Sprintf("%v", ids),
		Trace:    trace,
	}
}

// assertCount checks row_count and page_count.
func assertCount(t *table.Table[records.Record], trace []TraceEvent, assertion Assertion) error {
	var actual int
	if assertion.Type == AssertRowCount {
		actual = t.GetRowCount()
	} else {
		actual = t.GetPageCount()
	}
	if actual == *assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     assertion.Type,
		Expected: fmt.Sprintf("%d", *assertion.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Trace:    trace,
	}
}

// assertCell checks one row's value for one column. The row is looked up
// among all rows, not only the current page.
func assertCell(t *table.Table[records.Record], trace []TraceEvent, assertion Assertion) error {
	row, ok := t.GetRow(assertion.Row, true)
	if !ok {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("row %q", assertion.Row),
			Actual:   "row not found",
			Trace:    trace,
		}
	}
	if _, ok := t.GetColumn(assertion.Column); !ok {
		return fmt.Errorf("cell: unknown column %q", assertion.Column)
	}
	actual := row.GetValue(assertion.Column)
	if valuesEqual(actual, assertion.Value) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCell,
		Expected: fmt.Sprintf("%s[%s] = %v", assertion.Row, assertion.Column, assertion.Value),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    trace,
	}
}

// assertUniqueValues checks the column's faceted unique values, in facet
// order. Counts are not compared.
func assertUniqueValues(t *table.Table[records.Record], trace []TraceEvent, assertion Assertion) error {
	col, ok := t.GetColumn(assertion.Column)
	if !ok {
		return fmt.Errorf("unique_values: unknown column %q", assertion.Column)
	}
	facets := col.GetFacetedUniqueValues()
	actual := make([]any, len(facets))
	for i, f := range facets {
		actual[i] = f.Value
	}
	if valuesEqual(actual, assertion.Values) {
		return nil
	}
	return &AssertionError{
		Type:     AssertUniqueValues,
		Expected: fmt.Sprintf("%v", assertion.Values),
		Actual:   fmt.Sprintf("%v", actual),
		Trace:    trace,
	}
}

// valuesEqual compares values by their canonical JSON, so 36 from YAML
// equals 36.0 decoded from JSON records.
func valuesEqual(actual, expected any) bool {
	a, err := canon.Marshal(actual)
	if err != nil {
		return false
	}
	b, err := canon.Marshal(expected)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// EvaluateAssertions evaluates all assertions against the table.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(t *table.Table[records.Record], trace []TraceEvent, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertRowIDs:
			err = assertRowIDs(t, trace, assertion)
		case AssertRowCount, AssertPageCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: %s requires count", i, assertion.Type)
			} else {
				err = assertCount(t, trace, assertion)
			}
		case AssertCell:
			err = assertCell(t, trace, assertion)
		case AssertUniqueValues:
			err = assertUniqueValues(t, trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
