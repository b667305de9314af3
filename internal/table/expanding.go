package table

import "maps"

// expandRowModel is the expansion stage. Membership is unchanged; Rows
// becomes the display sequence: each row followed by its sub-rows when it
// is expanded.
func (t *Table[T]) expandRowModel(pre *RowModel[T]) *RowModel[T] {
	expanded := t.GetState().Expanded
	if len(pre.Rows) == 0 || (!expanded.All && len(expanded.Rows) == 0) {
		return pre
	}
	if !boolOr(t.options.PaginateExpandedRows, true) {
		return pre
	}
	return expandRows(pre)
}

func expandRows[T any](m *RowModel[T]) *RowModel[T] {
	display := make([]*Row[T], 0, len(m.Rows))
	var visit func(*Row[T])
	visit = func(r *Row[T]) {
		display = append(display, r)
		if len(r.SubRows) > 0 && r.GetIsExpanded() {
			for _, sub := range r.SubRows {
				visit(sub)
			}
		}
	}
	for _, r := range m.Rows {
		visit(r)
	}
	return &RowModel[T]{Rows: display, FlatRows: m.FlatRows, RowsByID: m.RowsByID}
}

// SetExpanded updates the expanded slice.
func (t *Table[T]) SetExpanded(u Updater[ExpandedState]) {
	t.options.OnExpandedChange(u)
}

// ResetExpanded restores the initial expanded state, or collapses every
// row when defaultState is true.
func (t *Table[T]) ResetExpanded(defaultState bool) {
	next := ExpandedState{Rows: map[string]bool{}}
	if !defaultState {
		init := t.initialState.Expanded
		next = ExpandedState{All: init.All, Rows: maps.Clone(init.Rows)}
		if !next.All && next.Rows == nil {
			next.Rows = map[string]bool{}
		}
	}
	t.SetExpanded(Replace(next))
}

// ToggleAllRowsExpanded expands every row, or collapses every row. A nil
// argument flips the current "all expanded" state.
func (t *Table[T]) ToggleAllRowsExpanded(expanded *bool) {
	if boolOr(expanded, !t.GetIsAllRowsExpanded()) {
		t.SetExpanded(Replace(ExpandAll()))
		return
	}
	t.SetExpanded(Replace(ExpandedState{Rows: map[string]bool{}}))
}

// GetCanSomeRowsExpand reports whether any pre-pagination row can expand.
func (t *Table[T]) GetCanSomeRowsExpand() bool {
	for _, r := range t.GetPrePaginationRowModel().FlatRows {
		if r.GetCanExpand() {
			return true
		}
	}
	return false
}

// GetIsSomeRowsExpanded reports whether at least one row is expanded.
func (t *Table[T]) GetIsSomeRowsExpanded() bool {
	return !t.GetState().Expanded.IsEmpty()
}

// GetIsAllRowsExpanded reports whether every row of the final model is
// expanded.
func (t *Table[T]) GetIsAllRowsExpanded() bool {
	expanded := t.GetState().Expanded
	if expanded.All {
		return true
	}
	if len(expanded.Rows) == 0 {
		return false
	}
	for _, r := range t.GetRowModel().FlatRows {
		if !r.GetIsExpanded() {
			return false
		}
	}
	return true
}

// GetExpandedDepth returns the deepest nesting level among expanded rows,
// counting a top-level row as 1. Expanded ids naming no row are ignored.
func (t *Table[T]) GetExpandedDepth() int {
	expanded := t.GetState().Expanded
	depth := 0
	if expanded.All {
		for _, row := range t.GetPreExpandedRowModel().FlatRows {
			depth = max(depth, row.Depth+1)
		}
		return depth
	}
	for id, ok := range expanded.Rows {
		if !ok {
			continue
		}
		if row, found := t.GetRow(id, true); found {
			depth = max(depth, row.Depth+1)
		}
	}
	return depth
}

// GetIsExpanded reports whether the row is expanded.
func (r *Row[T]) GetIsExpanded() bool {
	if fn := r.table.options.GetIsRowExpanded; fn != nil {
		return fn(r)
	}
	return r.table.GetState().Expanded.Has(r.ID)
}

// GetCanExpand reports whether the row can be expanded: by default, when
// expanding is enabled and the row has sub-rows.
func (r *Row[T]) GetCanExpand() bool {
	if fn := r.table.options.GetRowCanExpand; fn != nil {
		return fn(r)
	}
	return boolOr(r.table.options.EnableExpanding, true) && len(r.SubRows) > 0
}

// GetIsAllParentsExpanded reports whether every ancestor of the row is
// expanded.
func (r *Row[T]) GetIsAllParentsExpanded() bool {
	current := r
	for current.ParentID != "" {
		parent, ok := current.GetParentRow()
		if !ok {
			return true
		}
		if !parent.GetIsExpanded() {
			return false
		}
		current = parent
	}
	return true
}

// ToggleExpanded expands or collapses the row. A nil argument flips it.
func (r *Row[T]) ToggleExpanded(expanded *bool) {
	id := r.ID
	t := r.table
	t.SetExpanded(Modify(func(old ExpandedState) ExpandedState {
		exists := old.Has(id)
		want := boolOr(expanded, !exists)

		rows := make(map[string]bool)
		if old.All {
			for rid := range t.GetRowModel().RowsByID {
				rows[rid] = true
			}
		} else {
			maps.Copy(rows, old.Rows)
		}

		switch {
		case !exists && want:
			rows[id] = true
		case exists && !want:
			delete(rows, id)
		default:
			return old
		}
		return ExpandedState{Rows: rows}
	}))
}
