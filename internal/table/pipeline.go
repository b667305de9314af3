package table

import "time"

// autoResetState tracks which auto-resets have seen their first trigger.
// The first trigger only registers; later ones reset.
type autoResetState struct {
	pageIndexRegistered bool
	expandedRegistered  bool
}

func (t *Table[T]) autoResetPageIndex() {
	if !t.autoReset.pageIndexRegistered {
		t.queue.push("pageIndex", func() { t.autoReset.pageIndexRegistered = true })
		return
	}
	o := t.options
	if firstBool(!o.ManualPagination, o.AutoResetAll, o.AutoResetPageIndex) {
		t.queue.push("pageIndex", func() { t.ResetPageIndex(false) })
	}
}

func (t *Table[T]) autoResetExpanded() {
	if !t.autoReset.expandedRegistered {
		t.queue.push("expanded", func() { t.autoReset.expandedRegistered = true })
		return
	}
	o := t.options
	if firstBool(!o.ManualExpanding, o.AutoResetAll, o.AutoResetExpanded) {
		t.queue.push("expanded", func() { t.ResetExpanded(false) })
	}
}

// pull reads a row model and flushes any resets its computation queued.
// When a reset ran the model is read again so the caller sees the state
// after the reset.
func (t *Table[T]) pull(get func() *RowModel[T]) *RowModel[T] {
	return flushed(t, get)
}

// runStage computes one stage through its memo. A StageOverrides entry
// replaces the built-in computation.
func (t *Table[T]) runStage(stage Stage, m *memo[*RowModel[T]], upstream *RowModel[T], deps []any, compute func(*RowModel[T]) *RowModel[T]) (*RowModel[T], bool) {
	if override := t.options.StageOverrides[stage]; override != nil {
		compute = func(up *RowModel[T]) *RowModel[T] { return override(t, up) }
	}
	return m.get(deps, func() *RowModel[T] {
		start := time.Now()
		model := compute(upstream)
		rows := 0
		if model != nil {
			rows = len(model.FlatRows)
		}
		t.logger.Debug("row model computed",
			"stage", string(stage),
			"rows", rows,
			"duration", time.Since(start),
		)
		return model
	})
}

func (t *Table[T]) coreRowModel() *RowModel[T] {
	deps := []any{identityOf(t.options.Data), t.optionsVersion, t.columnsVersion}
	model, changed := t.runStage(StageCore, &t.coreMemo, nil, deps, func(*RowModel[T]) *RowModel[T] {
		return t.buildCoreRowModel()
	})
	if changed {
		t.autoResetPageIndex()
	}
	return model
}

func (t *Table[T]) columnFilteredRowModel() *RowModel[T] {
	pre := t.coreRowModel()
	if !t.HasFeature(FeatureColumnFiltering) || t.options.ManualFiltering {
		return pre
	}
	deps := []any{pre, fingerprint(t.GetState().ColumnFilters)}
	model, changed := t.runStage(StageColumnFiltered, &t.columnFilteredMemo, pre, deps, t.filterByColumns)
	if changed {
		t.autoResetPageIndex()
	}
	return model
}

func (t *Table[T]) globalFilteredRowModel() *RowModel[T] {
	pre := t.columnFilteredRowModel()
	if !t.HasFeature(FeatureGlobalFiltering) || t.options.ManualFiltering {
		return pre
	}
	deps := []any{pre, fingerprint(t.GetState().GlobalFilter)}
	model, changed := t.runStage(StageGlobalFiltered, &t.globalFilteredMemo, pre, deps, t.filterGlobally)
	if changed {
		t.autoResetPageIndex()
	}
	return model
}

func (t *Table[T]) groupedRowModel() *RowModel[T] {
	pre := t.globalFilteredRowModel()
	if !t.HasFeature(FeatureColumnGrouping) || t.options.ManualGrouping {
		return pre
	}
	deps := []any{pre, fingerprint(t.GetState().Grouping)}
	model, changed := t.runStage(StageGrouped, &t.groupedMemo, pre, deps, t.groupRows)
	if changed {
		t.autoResetExpanded()
		t.autoResetPageIndex()
	}
	return model
}

func (t *Table[T]) sortedRowModel() *RowModel[T] {
	pre := t.groupedRowModel()
	if !t.HasFeature(FeatureRowSorting) || t.options.ManualSorting {
		return pre
	}
	deps := []any{pre, fingerprint(t.GetState().Sorting)}
	model, changed := t.runStage(StageSorted, &t.sortedMemo, pre, deps, t.sortRows)
	if changed {
		t.autoResetPageIndex()
	}
	return model
}

func (t *Table[T]) expandedRowModel() *RowModel[T] {
	pre := t.sortedRowModel()
	if !t.HasFeature(FeatureRowExpanding) || t.options.ManualExpanding {
		return pre
	}
	deps := []any{pre, fingerprint(t.GetState().Expanded)}
	model, _ := t.runStage(StageExpanded, &t.expandedMemo, pre, deps, t.expandRowModel)
	return model
}

func (t *Table[T]) paginatedRowModel() *RowModel[T] {
	pre := t.expandedRowModel()
	if !t.HasFeature(FeatureRowPagination) || t.options.ManualPagination {
		return pre
	}
	deps := []any{pre, t.GetState().Pagination}
	if !boolOr(t.options.PaginateExpandedRows, true) {
		deps = append(deps, fingerprint(t.GetState().Expanded))
	}
	model, _ := t.runStage(StagePaginated, &t.paginatedMemo, pre, deps, t.paginateRows)
	return model
}

// GetCoreRowModel returns the row tree built directly from the data.
func (t *Table[T]) GetCoreRowModel() *RowModel[T] {
	return t.pull(t.coreRowModel)
}

// GetPreFilteredRowModel returns the input of the filtering stages.
func (t *Table[T]) GetPreFilteredRowModel() *RowModel[T] {
	return t.pull(t.coreRowModel)
}

// GetColumnFilteredRowModel returns the rows passing every column filter.
func (t *Table[T]) GetColumnFilteredRowModel() *RowModel[T] {
	return t.pull(t.columnFilteredRowModel)
}

// GetFilteredRowModel returns the rows passing the column filters and the
// global filter.
func (t *Table[T]) GetFilteredRowModel() *RowModel[T] {
	return t.pull(t.globalFilteredRowModel)
}

// GetPreGroupedRowModel returns the input of the grouping stage.
func (t *Table[T]) GetPreGroupedRowModel() *RowModel[T] {
	return t.pull(t.globalFilteredRowModel)
}

// GetGroupedRowModel returns the grouped rows.
func (t *Table[T]) GetGroupedRowModel() *RowModel[T] {
	return t.pull(t.groupedRowModel)
}

// GetPreSortedRowModel returns the input of the sorting stage.
func (t *Table[T]) GetPreSortedRowModel() *RowModel[T] {
	return t.pull(t.groupedRowModel)
}

// GetSortedRowModel returns the sorted rows.
func (t *Table[T]) GetSortedRowModel() *RowModel[T] {
	return t.pull(t.sortedRowModel)
}

// GetPreExpandedRowModel returns the input of the expansion stage.
func (t *Table[T]) GetPreExpandedRowModel() *RowModel[T] {
	return t.pull(t.sortedRowModel)
}

// GetExpandedRowModel returns the expansion stage output, whose Rows is the
// display sequence of expanded rows.
func (t *Table[T]) GetExpandedRowModel() *RowModel[T] {
	return t.pull(t.expandedRowModel)
}

// GetPrePaginationRowModel returns the input of the pagination stage.
func (t *Table[T]) GetPrePaginationRowModel() *RowModel[T] {
	return t.pull(t.expandedRowModel)
}

// GetPaginationRowModel returns the current page.
func (t *Table[T]) GetPaginationRowModel() *RowModel[T] {
	return t.pull(t.paginatedRowModel)
}

// GetRowModel returns the final row model, the current page.
func (t *Table[T]) GetRowModel() *RowModel[T] {
	return t.pull(t.paginatedRowModel)
}

// GetRow looks a row up by id in the final row model, or with searchAll in
// the pre-pagination model, falling back to the core row model.
func (t *Table[T]) GetRow(id string, searchAll bool) (*Row[T], bool) {
	var m *RowModel[T]
	if searchAll {
		m = t.GetPrePaginationRowModel()
	} else {
		m = t.GetRowModel()
	}
	if r, ok := m.RowsByID[id]; ok {
		return r, true
	}
	r, ok := t.GetCoreRowModel().RowsByID[id]
	return r, ok
}
