package table

import "slices"

// GlobalFilterID is the key under which rows record the global filter
// result in Row.ColumnFilters.
const GlobalFilterID = "__global__"

// rowPredicate decides whether a row passes a filter stage. It may record
// per-row filter results on the row it is given.
type rowPredicate[T any] func(row *Row[T]) bool

// filterRowModel filters a row tree with the traversal policy selected by
// Options.FilterFromLeafRows.
func (t *Table[T]) filterRowModel(rows []*Row[T], pass rowPredicate[T]) *RowModel[T] {
	if t.options.FilterFromLeafRows {
		return t.newRowModel(t.filterFromLeafs(rows, pass, 0))
	}
	return t.newRowModel(t.filterFromRoot(rows, pass, 0))
}

func (t *Table[T]) maxFilterDepth() int {
	if t.options.MaxLeafRowFilterDepth == nil {
		return DefaultMaxLeafRowFilterDepth
	}
	return max(*t.options.MaxLeafRowFilterDepth, 0)
}

// filterFromRoot evaluates each row before its children. A failing row is
// dropped with its whole subtree; a passing row keeps whatever children
// pass, possibly none. Below the depth cap subtrees are kept as is.
func (t *Table[T]) filterFromRoot(rows []*Row[T], pass rowPredicate[T], depth int) []*Row[T] {
	out := make([]*Row[T], 0, len(rows))
	for _, src := range rows {
		row := t.deriveRow(src)
		if !pass(row) {
			continue
		}
		if len(src.SubRows) > 0 {
			if depth < t.maxFilterDepth() {
				row.SubRows = t.filterFromRoot(src.SubRows, pass, depth+1)
			} else {
				row.SubRows = t.deriveTree(src.SubRows)
			}
		}
		out = append(out, row)
	}
	return out
}

// filterFromLeafs filters children before their parent. A parent survives
// when it passes or when at least one descendant survives. A row at the
// depth cap is evaluated as a leaf and its subtree is kept unfiltered.
func (t *Table[T]) filterFromLeafs(rows []*Row[T], pass rowPredicate[T], depth int) []*Row[T] {
	out := make([]*Row[T], 0, len(rows))
	for _, src := range rows {
		row := t.deriveRow(src)
		if len(src.SubRows) > 0 && depth < t.maxFilterDepth() {
			row.SubRows = t.filterFromLeafs(src.SubRows, pass, depth+1)
			if pass(row) || len(row.SubRows) > 0 {
				out = append(out, row)
			}
			continue
		}
		if !pass(row) {
			continue
		}
		if len(src.SubRows) > 0 {
			row.SubRows = t.deriveTree(src.SubRows)
		}
		out = append(out, row)
	}
	return out
}

// deriveTree copies a subtree so the new model owns every row in it.
func (t *Table[T]) deriveTree(rows []*Row[T]) []*Row[T] {
	out := make([]*Row[T], len(rows))
	for i, src := range rows {
		row := t.deriveRow(src)
		if len(src.SubRows) > 0 {
			row.SubRows = t.deriveTree(src.SubRows)
		}
		out[i] = row
	}
	return out
}

// recordFilter stores one filter result on a row.
func recordFilter[T any](row *Row[T], id string, passed bool, meta any, hasMeta bool) {
	if row.ColumnFilters == nil {
		row.ColumnFilters = make(map[string]bool)
	}
	row.ColumnFilters[id] = passed
	if hasMeta {
		if row.ColumnFiltersMeta == nil {
			row.ColumnFiltersMeta = make(map[string]any)
		}
		row.ColumnFiltersMeta[id] = meta
	}
}

type resolvedFilter[T any] struct {
	id    string
	fn    *FilterFn[T]
	value any
}

// columnFilterPredicate builds the AND of the active column filters,
// skipping the filter on exclude. Filters on unknown columns are ignored.
// It reports false when no filter applies.
func (t *Table[T]) columnFilterPredicate(filters ColumnFiltersState, exclude string) (rowPredicate[T], bool) {
	resolved := make([]resolvedFilter[T], 0, len(filters))
	for _, f := range filters {
		if f.ID == exclude {
			continue
		}
		col, ok := t.GetColumn(f.ID)
		if !ok {
			t.logger.Debug("column filter ignored: unknown column", "column", f.ID)
			continue
		}
		if !col.GetCanFilter() {
			continue
		}
		fn := col.GetFilterFn()
		if fn == nil {
			t.logger.Warn("column filter ignored: no filter function", "column", f.ID, "filterFn", col.Def.FilterFn)
			continue
		}
		value := f.Value
		if fn.ResolveFilterValue != nil {
			value = fn.ResolveFilterValue(value)
		}
		resolved = append(resolved, resolvedFilter[T]{id: f.ID, fn: fn, value: value})
	}
	if len(resolved) == 0 {
		return nil, false
	}

	return func(row *Row[T]) bool {
		ok := true
		for _, f := range resolved {
			var meta any
			hasMeta := false
			passed := f.fn.Fn(row, f.id, f.value, func(m any) { meta, hasMeta = m, true })
			recordFilter(row, f.id, passed, meta, hasMeta)
			if !passed {
				ok = false
			}
		}
		return ok
	}, true
}

// globalFilterPredicate builds the OR of the global filter over every
// globally filterable column. It reports false when the filter is inactive.
func (t *Table[T]) globalFilterPredicate(value any) (rowPredicate[T], bool) {
	if value == nil || value == "" {
		return nil, false
	}
	fn := t.GetGlobalFilterFn()
	if fn == nil {
		t.logger.Warn("global filter ignored: no filter function", "globalFilterFn", t.options.GlobalFilterFn)
		return nil, false
	}
	columns := t.globallyFilterableColumns()
	if len(columns) == 0 {
		return nil, false
	}
	if fn.ResolveFilterValue != nil {
		value = fn.ResolveFilterValue(value)
	}

	return func(row *Row[T]) bool {
		passed := false
		var meta any
		hasMeta := false
		for _, col := range columns {
			if fn.Fn(row, col.ID, value, func(m any) { meta, hasMeta = m, true }) {
				passed = true
				break
			}
		}
		recordFilter(row, GlobalFilterID, passed, meta, hasMeta)
		return passed
	}, true
}

func (t *Table[T]) globallyFilterableColumns() []*Column[T] {
	var cols []*Column[T]
	for _, c := range t.GetAllLeafColumns() {
		if c.GetCanGlobalFilter() {
			cols = append(cols, c)
		}
	}
	return cols
}

// filterByColumns is the column filtering stage.
func (t *Table[T]) filterByColumns(pre *RowModel[T]) *RowModel[T] {
	pass, ok := t.columnFilterPredicate(t.GetState().ColumnFilters, "")
	if !ok || len(pre.Rows) == 0 {
		return pre
	}
	return t.filterRowModel(pre.Rows, pass)
}

// filterGlobally is the global filtering stage.
func (t *Table[T]) filterGlobally(pre *RowModel[T]) *RowModel[T] {
	pass, ok := t.globalFilterPredicate(t.GetState().GlobalFilter)
	if !ok || len(pre.Rows) == 0 {
		return pre
	}
	return t.filterRowModel(pre.Rows, pass)
}

// SetColumnFilters updates the columnFilters slice. Entries whose value the
// column's filter function would auto-remove are dropped.
func (t *Table[T]) SetColumnFilters(u Updater[ColumnFiltersState]) {
	t.options.OnColumnFiltersChange(Modify(func(old ColumnFiltersState) ColumnFiltersState {
		next := FunctionalUpdate(u, old)
		return slices.DeleteFunc(slices.Clone(next), func(f ColumnFilter) bool {
			col, ok := t.GetColumn(f.ID)
			return ok && shouldAutoRemoveFilter(col.GetFilterFn(), f.Value, col)
		})
	}))
}

// ResetColumnFilters restores the initial column filters, or clears them
// when defaultState is true.
func (t *Table[T]) ResetColumnFilters(defaultState bool) {
	next := ColumnFiltersState{}
	if !defaultState && t.initialState.ColumnFilters != nil {
		next = slices.Clone(t.initialState.ColumnFilters)
	}
	t.SetColumnFilters(Replace(next))
}

// SetGlobalFilter updates the globalFilter slice.
func (t *Table[T]) SetGlobalFilter(u Updater[any]) {
	t.options.OnGlobalFilterChange(u)
}

// ResetGlobalFilter restores the initial global filter, or clears it when
// defaultState is true.
func (t *Table[T]) ResetGlobalFilter(defaultState bool) {
	var next any
	if !defaultState {
		next = t.initialState.GlobalFilter
	}
	t.SetGlobalFilter(Replace(next))
}

// GetGlobalAutoFilterFn returns the global filter used for "auto": numeric
// equality against numeric cells when the filter value is numeric,
// case-insensitive substring match otherwise.
func (t *Table[T]) GetGlobalAutoFilterFn() *FilterFn[T] {
	return globalAutoFilter[T]()
}

// GetGlobalFilterFn resolves Options.GlobalFilterFn.
func (t *Table[T]) GetGlobalFilterFn() *FilterFn[T] {
	name := t.options.GlobalFilterFn
	if name == "" || name == FilterAuto {
		return t.GetGlobalAutoFilterFn()
	}
	return t.lookupFilterFn(name)
}

// lookupFilterFn finds a named filter function in the options, then in the
// built-in table.
func (t *Table[T]) lookupFilterFn(name string) *FilterFn[T] {
	if fn, ok := t.options.FilterFns[name]; ok {
		return fn
	}
	if fn, ok := builtinFilterFn[T](name); ok {
		return fn
	}
	return nil
}

// GetCanFilter reports whether column filters may apply to the column.
func (c *Column[T]) GetCanFilter() bool {
	o := c.table.options
	return boolOr(c.Def.EnableColumnFilter, true) &&
		boolOr(o.EnableColumnFilters, true) &&
		boolOr(o.EnableFilters, true) &&
		c.HasAccessor()
}

// GetCanGlobalFilter reports whether the global filter searches the column.
// By default a column is searched when its first value is a string or a
// number.
func (c *Column[T]) GetCanGlobalFilter() bool {
	o := c.table.options
	if !boolOr(c.Def.EnableGlobalFilter, true) ||
		!boolOr(o.EnableGlobalFilter, true) ||
		!boolOr(o.EnableFilters, true) ||
		!c.HasAccessor() {
		return false
	}
	if o.GetColumnCanGlobalFilter != nil {
		return o.GetColumnCanGlobalFilter(c)
	}
	switch c.table.columnProfiles()[c.ID].firstKind {
	case KindString, KindNumber:
		return true
	}
	return false
}

// GetFilterIndex returns the position of the column's filter in the
// columnFilters slice, or -1.
func (c *Column[T]) GetFilterIndex() int {
	return slices.IndexFunc(c.table.GetState().ColumnFilters, func(f ColumnFilter) bool { return f.ID == c.ID })
}

// GetIsFiltered reports whether the column has an active filter.
func (c *Column[T]) GetIsFiltered() bool {
	return c.GetFilterIndex() > -1
}

// GetFilterValue returns the column's filter value, or nil.
func (c *Column[T]) GetFilterValue() any {
	filters := c.table.GetState().ColumnFilters
	if i := c.GetFilterIndex(); i > -1 {
		return filters[i].Value
	}
	return nil
}

// GetAutoFilterFn picks a filter function from the column's value kind.
func (c *Column[T]) GetAutoFilterFn() *FilterFn[T] {
	switch c.table.columnProfiles()[c.ID].firstKind {
	case KindString:
		return c.table.lookupFilterFn(FilterIncludesString)
	case KindNumber:
		return c.table.lookupFilterFn(FilterInNumberRange)
	case KindBool, KindDate, KindOther:
		return c.table.lookupFilterFn(FilterEquals)
	case KindArray:
		return c.table.lookupFilterFn(FilterArrIncludes)
	}
	return c.table.lookupFilterFn(FilterWeakEquals)
}

// GetFilterFn resolves the column's filter function, or nil when the name
// is unknown.
func (c *Column[T]) GetFilterFn() *FilterFn[T] {
	name := c.Def.FilterFn
	if name == "" || name == FilterAuto {
		return c.GetAutoFilterFn()
	}
	return c.table.lookupFilterFn(name)
}

// SetFilterValue updates the column's filter. A value the filter function
// auto-removes, or a nil or empty string value, removes the filter.
func (c *Column[T]) SetFilterValue(u Updater[any]) {
	c.table.SetColumnFilters(Modify(func(old ColumnFiltersState) ColumnFiltersState {
		idx := slices.IndexFunc(old, func(f ColumnFilter) bool { return f.ID == c.ID })
		var prev any
		if idx > -1 {
			prev = old[idx].Value
		}
		next := FunctionalUpdate(u, prev)

		if shouldAutoRemoveFilter(c.GetFilterFn(), next, c) {
			return slices.DeleteFunc(slices.Clone(old), func(f ColumnFilter) bool { return f.ID == c.ID })
		}
		entry := ColumnFilter{ID: c.ID, Value: next}
		out := slices.Clone(old)
		if idx > -1 {
			out[idx] = entry
			return out
		}
		return append(out, entry)
	}))
}

func shouldAutoRemoveFilter[T any](fn *FilterFn[T], value any, col *Column[T]) bool {
	if fn != nil && fn.AutoRemove != nil && fn.AutoRemove(value, col) {
		return true
	}
	return value == nil || value == ""
}
