package query

import (
	"fmt"
	"slices"

	"github.com/roach88/tablecore/internal/table"
)

// Apply parses filter and orderBy against t's columns and writes the
// result into t's state. Columns referenced by the filter are switched to
// the compare filter function. Empty strings leave the corresponding
// slice untouched.
func Apply[T any](t *table.Table[T], filter, orderBy string) error {
	fields := InferFields(t)

	if filter != "" {
		filters, err := ParseFilter(filter, fields)
		if err != nil {
			return err
		}
		if err := useCompare(t, filters); err != nil {
			return err
		}
		t.SetColumnFilters(table.Replace(filters))
	}

	if orderBy != "" {
		sorting, err := ParseOrderBy(orderBy, fields)
		if err != nil {
			return err
		}
		t.SetSorting(table.Replace(sorting))
	}
	return nil
}

// useCompare sets FilterFn to compare on every column the filters name.
func useCompare[T any](t *table.Table[T], filters table.ColumnFiltersState) error {
	cols := slices.Clone(t.Options().Columns)
	changed := false
	for i := range cols {
		id := table.ColumnIDOf(cols[i])
		if cols[i].FilterFn == table.FilterCompare {
			continue
		}
		if slices.ContainsFunc(filters, func(f table.ColumnFilter) bool { return f.ID == id }) {
			cols[i].FilterFn = table.FilterCompare
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := t.SetOptions(table.Modify(func(o table.Options[T]) table.Options[T] {
		o.Columns = cols
		return o
	})); err != nil {
		return fmt.Errorf("apply filter: %w", err)
	}
	return nil
}

// RestoreState replaces t's state with s. Columns whose restored filter
// holds comparisons are switched back to the compare filter function.
//
// Restoring changes the upstream row models, so the resets they queue are
// flushed before the saved page and expansion are written back.
func RestoreState[T any](t *table.Table[T], s table.State) error {
	var compared table.ColumnFiltersState
	for _, f := range s.ColumnFilters {
		if isComparisons(f.Value) {
			compared = append(compared, f)
		}
	}
	if len(compared) > 0 {
		if err := useCompare(t, compared); err != nil {
			return err
		}
	}

	t.SetState(table.Replace(s))
	t.GetRowModel()
	t.SetExpanded(table.Replace(s.Expanded))
	t.SetPagination(table.Replace(s.Pagination))
	return nil
}

// isComparisons reports whether v is a comparison list, typed or in its
// decoded JSON form.
func isComparisons(v any) bool {
	switch x := v.(type) {
	case []table.Comparison:
		return len(x) > 0
	case []any:
		if len(x) == 0 {
			return false
		}
		for _, e := range x {
			m, ok := e.(map[string]any)
			if !ok {
				return false
			}
			if _, ok := m["op"]; !ok {
				return false
			}
		}
		return true
	}
	return false
}
