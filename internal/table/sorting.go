package table

import "slices"

// SortDirection is a column's sort direction; SortNone means unsorted.
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type sortKey[T any] struct {
	id        string
	desc      bool
	invert    bool
	undefined SortUndefined
	fn        SortingFn[T]
}

// sortRows is the sorting stage: a stable multi-key sort applied to each
// sibling group separately, so the tree shape is preserved.
func (t *Table[T]) sortRows(pre *RowModel[T]) *RowModel[T] {
	sorting := t.GetState().Sorting
	if len(pre.Rows) == 0 || len(sorting) == 0 {
		return pre
	}

	keys := make([]sortKey[T], 0, len(sorting))
	for _, s := range sorting {
		col, ok := t.GetColumn(s.ID)
		if !ok {
			t.logger.Debug("sort ignored: unknown column", "column", s.ID)
			continue
		}
		if !col.GetCanSort() {
			continue
		}
		fn := col.GetSortingFn()
		if fn == nil {
			t.logger.Warn("sort ignored: no sorting function", "column", s.ID, "sortingFn", col.Def.SortingFn)
			continue
		}
		undefined := col.Def.SortUndefined
		if undefined == "" {
			undefined = SortUndefinedLast
		}
		keys = append(keys, sortKey[T]{
			id:        s.ID,
			desc:      s.Desc,
			invert:    col.Def.InvertSorting,
			undefined: undefined,
			fn:        fn,
		})
	}
	if len(keys) == 0 {
		return pre
	}

	cmp := func(a, b *Row[T]) int {
		for _, k := range keys {
			if k.undefined != SortUndefinedNone {
				aMissing := a.GetValue(k.id) == nil
				bMissing := b.GetValue(k.id) == nil
				if aMissing && bMissing {
					continue
				}
				// Missing values go to the configured end whatever the direction.
				if aMissing || bMissing {
					if aMissing == (k.undefined == SortUndefinedFirst) {
						return -1
					}
					return 1
				}
			}
			c := k.fn(a, b, k.id)
			if c == 0 {
				continue
			}
			if k.desc {
				c = -c
			}
			if k.invert {
				c = -c
			}
			return c
		}
		return 0
	}

	var sortLevel func([]*Row[T]) []*Row[T]
	sortLevel = func(rows []*Row[T]) []*Row[T] {
		out := make([]*Row[T], len(rows))
		for i, src := range rows {
			out[i] = t.deriveRow(src)
		}
		slices.SortStableFunc(out, cmp)
		for _, row := range out {
			if len(row.SubRows) > 0 {
				row.SubRows = sortLevel(row.SubRows)
			}
		}
		return out
	}

	return t.newRowModel(sortLevel(pre.Rows))
}

// SetSorting updates the sorting slice.
func (t *Table[T]) SetSorting(u Updater[SortingState]) {
	t.options.OnSortingChange(u)
}

// ResetSorting restores the initial sorting, or clears it when
// defaultState is true.
func (t *Table[T]) ResetSorting(defaultState bool) {
	next := SortingState{}
	if !defaultState && t.initialState.Sorting != nil {
		next = slices.Clone(t.initialState.Sorting)
	}
	t.SetSorting(Replace(next))
}

// GetCanSort reports whether the column can be sorted.
func (c *Column[T]) GetCanSort() bool {
	return boolOr(c.Def.EnableSorting, true) &&
		boolOr(c.table.options.EnableSorting, true) &&
		c.HasAccessor()
}

// GetCanMultiSort reports whether the column can join a multi-column sort.
func (c *Column[T]) GetCanMultiSort() bool {
	return firstBool(c.HasAccessor(), c.Def.EnableMultiSort, c.table.options.EnableMultiSort)
}

// GetIsSorted returns the column's current sort direction.
func (c *Column[T]) GetIsSorted() SortDirection {
	for _, s := range c.table.GetState().Sorting {
		if s.ID == c.ID {
			if s.Desc {
				return SortDesc
			}
			return SortAsc
		}
	}
	return SortNone
}

// GetSortIndex returns the column's position in the sorting slice, or -1.
func (c *Column[T]) GetSortIndex() int {
	return slices.IndexFunc(c.table.GetState().Sorting, func(s ColumnSort) bool { return s.ID == c.ID })
}

// GetAutoSortDir is ascending for text columns and descending otherwise.
func (c *Column[T]) GetAutoSortDir() SortDirection {
	if c.Kind() == KindString {
		return SortAsc
	}
	return SortDesc
}

// GetFirstSortDir returns the direction a first toggle sorts in.
func (c *Column[T]) GetFirstSortDir() SortDirection {
	descFirst := firstBool(c.GetAutoSortDir() == SortDesc, c.Def.SortDescFirst, c.table.options.SortDescFirst)
	if descFirst {
		return SortDesc
	}
	return SortAsc
}

// GetNextSortingOrder returns the direction the next toggle moves to, or
// SortNone when the toggle removes the sort.
func (c *Column[T]) GetNextSortingOrder(multi bool) SortDirection {
	first := c.GetFirstSortDir()
	current := c.GetIsSorted()
	if current == SortNone {
		return first
	}
	o := c.table.options
	if current != first &&
		boolOr(o.EnableSortingRemoval, true) &&
		(!multi || boolOr(o.EnableMultiRemove, true)) {
		return SortNone
	}
	if current == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// ToggleSorting cycles the column's sort. desc forces a direction; multi
// adds the column to the existing sort instead of replacing it.
func (c *Column[T]) ToggleSorting(desc *bool, multi bool) {
	next := c.GetNextSortingOrder(multi)
	canMulti := c.GetCanMultiSort()
	maxCount := c.table.options.MaxMultiSortColCount

	c.table.SetSorting(Modify(func(old SortingState) SortingState {
		idx := slices.IndexFunc(old, func(s ColumnSort) bool { return s.ID == c.ID })
		nextDesc := next == SortDesc
		if desc != nil {
			nextDesc = *desc
		}

		var action string
		switch {
		case len(old) > 0 && canMulti && multi:
			if idx > -1 {
				action = "toggle"
			} else {
				action = "add"
			}
		case len(old) > 0 && idx != len(old)-1:
			action = "replace"
		case idx > -1:
			action = "toggle"
		default:
			action = "replace"
		}
		if action == "toggle" && desc == nil && next == SortNone {
			action = "remove"
		}

		switch action {
		case "add":
			out := append(slices.Clone(old), ColumnSort{ID: c.ID, Desc: nextDesc})
			if maxCount > 0 && len(out) > maxCount {
				out = out[len(out)-maxCount:]
			}
			return out
		case "toggle":
			out := slices.Clone(old)
			out[idx].Desc = nextDesc
			return out
		case "remove":
			return slices.DeleteFunc(slices.Clone(old), func(s ColumnSort) bool { return s.ID == c.ID })
		}
		return SortingState{{ID: c.ID, Desc: nextDesc}}
	}))
}

// ClearSorting removes the column from the sorting slice.
func (c *Column[T]) ClearSorting() {
	c.table.SetSorting(Modify(func(old SortingState) SortingState {
		return slices.DeleteFunc(slices.Clone(old), func(s ColumnSort) bool { return s.ID == c.ID })
	}))
}

// GetAutoSortingFn picks a sorting function from a sample of the column's
// values: datetime for dates, alphanumeric for text containing digits,
// text for other text and basic otherwise.
func (c *Column[T]) GetAutoSortingFn() SortingFn[T] {
	fn, _ := c.table.lookupSortingFn(c.table.columnProfiles()[c.ID].autoSort)
	return fn
}

// GetSortingFn resolves the column's sorting function, or nil when the name
// is unknown.
func (c *Column[T]) GetSortingFn() SortingFn[T] {
	name := c.Def.SortingFn
	if name == "" || name == SortAuto {
		return c.GetAutoSortingFn()
	}
	fn, _ := c.table.lookupSortingFn(name)
	return fn
}

func (t *Table[T]) lookupSortingFn(name string) (SortingFn[T], bool) {
	if fn, ok := t.options.SortingFns[name]; ok {
		return fn, true
	}
	return builtinSortingFn[T](name)
}
