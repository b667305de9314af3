package table

// paginateRows is the pagination stage. The page index is clamped into
// [0, pageCount-1] here without touching state; a page size of 0 yields an
// empty page.
func (t *Table[T]) paginateRows(pre *RowModel[T]) *RowModel[T] {
	if len(pre.Rows) == 0 {
		return pre
	}
	p := t.GetState().Pagination
	if p.PageSize <= 0 {
		return t.newRowModel(nil)
	}
	pageCount := ceilDiv(len(pre.Rows), p.PageSize)
	index := min(max(p.PageIndex, 0), pageCount-1)

	start := index * p.PageSize
	end := min(start+p.PageSize, len(pre.Rows))
	rows := make([]*Row[T], end-start)
	copy(rows, pre.Rows[start:end])

	page := &RowModel[T]{Rows: rows}
	if !boolOr(t.options.PaginateExpandedRows, true) {
		page = expandRows(page)
	}

	// The display sequence may list a row and its expanded sub-rows, so the
	// flattening skips rows already seen.
	seen := make(map[*Row[T]]bool)
	page.RowsByID = make(map[string]*Row[T])
	var visit func(*Row[T])
	visit = func(r *Row[T]) {
		if seen[r] {
			return
		}
		seen[r] = true
		page.FlatRows = append(page.FlatRows, r)
		if _, ok := page.RowsByID[r.ID]; !ok {
			page.RowsByID[r.ID] = r
		}
		for _, sub := range r.SubRows {
			visit(sub)
		}
	}
	for _, r := range page.Rows {
		visit(r)
	}
	return page
}

func ceilDiv(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// SetPagination updates the pagination slice.
func (t *Table[T]) SetPagination(u Updater[PaginationState]) {
	t.options.OnPaginationChange(u)
}

// ResetPagination restores the initial pagination, or the default one when
// defaultState is true.
func (t *Table[T]) ResetPagination(defaultState bool) {
	next := PaginationState{PageIndex: DefaultPageIndex, PageSize: DefaultPageSize}
	if !defaultState {
		next = t.initialState.Pagination
	}
	t.SetPagination(Replace(next))
}

// SetPageIndex updates the page index, clamped into the valid pages. An
// unknown manual page count (-1) leaves the upper end open.
func (t *Table[T]) SetPageIndex(u Updater[int]) {
	pageCount := t.GetPageCount()
	t.SetPagination(Modify(func(old PaginationState) PaginationState {
		index := max(FunctionalUpdate(u, old.PageIndex), 0)
		if pageCount >= 0 {
			index = min(index, max(pageCount-1, 0))
		}
		old.PageIndex = index
		return old
	}))
}

// ResetPageIndex restores the initial page index, or 0 when defaultState is
// true.
func (t *Table[T]) ResetPageIndex(defaultState bool) {
	index := DefaultPageIndex
	if !defaultState {
		index = t.initialState.Pagination.PageIndex
	}
	t.SetPageIndex(Replace(index))
}

// SetPageSize updates the page size, at least 1, and moves to the page that
// still shows the previous top row.
func (t *Table[T]) SetPageSize(u Updater[int]) {
	t.SetPagination(Modify(func(old PaginationState) PaginationState {
		size := max(FunctionalUpdate(u, old.PageSize), 1)
		top := old.PageSize * old.PageIndex
		return PaginationState{PageIndex: top / size, PageSize: size}
	}))
}

// ResetPageSize restores the initial page size, or the default when
// defaultState is true.
func (t *Table[T]) ResetPageSize(defaultState bool) {
	size := DefaultPageSize
	if !defaultState {
		size = t.initialState.Pagination.PageSize
	}
	t.SetPageSize(Replace(size))
}

// GetRowCount returns the number of rows being paginated: Options.RowCount
// when set, else the pre-pagination row count.
func (t *Table[T]) GetRowCount() int {
	if t.options.RowCount != nil {
		return *t.options.RowCount
	}
	return len(t.GetPrePaginationRowModel().Rows)
}

// GetPageCount returns Options.PageCount when set, else
// ceil(rowCount / pageSize). A page size or row count of 0 gives 0 pages.
func (t *Table[T]) GetPageCount() int {
	if t.options.PageCount != nil {
		return *t.options.PageCount
	}
	return ceilDiv(t.GetRowCount(), t.GetState().Pagination.PageSize)
}

// GetPageOptions returns the valid page indexes.
func (t *Table[T]) GetPageOptions() []int {
	n := t.GetPageCount()
	if n <= 0 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// GetCanPreviousPage reports whether a previous page exists.
func (t *Table[T]) GetCanPreviousPage() bool {
	return t.GetState().Pagination.PageIndex > 0
}

// GetCanNextPage reports whether a next page exists.
func (t *Table[T]) GetCanNextPage() bool {
	n := t.GetPageCount()
	switch {
	case n == -1:
		return true
	case n == 0:
		return false
	}
	return t.GetState().Pagination.PageIndex < n-1
}

// PreviousPage moves one page back.
func (t *Table[T]) PreviousPage() {
	t.SetPageIndex(Modify(func(i int) int { return i - 1 }))
}

// NextPage moves one page forward.
func (t *Table[T]) NextPage() {
	t.SetPageIndex(Modify(func(i int) int { return i + 1 }))
}

// FirstPage moves to the first page.
func (t *Table[T]) FirstPage() {
	t.SetPageIndex(Replace(0))
}

// LastPage moves to the last page.
func (t *Table[T]) LastPage() {
	t.SetPageIndex(Replace(t.GetPageCount() - 1))
}
