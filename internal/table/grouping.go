package table

import (
	"slices"
	"strconv"
)

// groupInfo is carried by group rows. Rows derived from a group row share
// it, so aggregates are computed once.
type groupInfo[T any] struct {
	columns []string
	values  map[string]any
}

// groupValue returns a group row's value: the first leaf's value for the
// grouping columns, the column's aggregate otherwise.
func (r *Row[T]) groupValue(columnID string) any {
	if v, ok := r.group.values[columnID]; ok {
		return v
	}
	var v any
	if slices.Contains(r.group.columns, columnID) {
		if len(r.LeafRows) > 0 {
			v = r.LeafRows[0].GetValue(columnID)
		}
	} else if col, ok := r.table.GetColumn(columnID); ok {
		if fn := col.GetAggregationFn(); fn != nil {
			v = fn(columnID, r.LeafRows, r.SubRows)
		}
	}
	r.group.values[columnID] = v
	return v
}

type rowGroup[T any] struct {
	value any
	rows  []*Row[T]
}

// groupBy partitions rows by their grouping value for columnID, keeping
// groups in first-seen order.
func groupBy[T any](rows []*Row[T], columnID string) []*rowGroup[T] {
	var groups []*rowGroup[T]
	index := make(map[any]*rowGroup[T])
	for _, row := range rows {
		v := row.GetGroupingValue(columnID)
		k := groupKey(v)
		g, ok := index[k]
		if !ok {
			g = &rowGroup[T]{value: v}
			index[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	return groups
}

// groupRows is the grouping stage. Group rows get ids "col:value", nested
// as "parent>col:value", with a "#n" suffix when sibling labels collide; their sub-rows are the matching rows, and leaf
// rows keep their ids.
func (t *Table[T]) groupRows(pre *RowModel[T]) *RowModel[T] {
	grouping := t.GetState().Grouping
	columns := make([]string, 0, len(grouping))
	for _, id := range grouping {
		if _, ok := t.GetColumn(id); !ok {
			t.logger.Debug("grouping ignored: unknown column", "column", id)
			continue
		}
		columns = append(columns, id)
	}
	if len(pre.Rows) == 0 || len(columns) == 0 {
		return pre
	}
	return t.newRowModel(t.groupUp(pre.Rows, columns, 0, ""))
}

func (t *Table[T]) groupUp(rows []*Row[T], columns []string, depth int, parentID string) []*Row[T] {
	if depth >= len(columns) {
		out := make([]*Row[T], len(rows))
		for i, src := range rows {
			row := t.deriveRow(src)
			row.Depth = depth
			if parentID != "" {
				row.ParentID = parentID
			}
			if len(src.SubRows) > 0 {
				row.SubRows = t.groupUp(src.SubRows, columns, depth+1, row.ID)
			}
			out[i] = row
		}
		return out
	}

	columnID := columns[depth]
	groups := groupBy(rows, columnID)
	out := make([]*Row[T], len(groups))
	used := make(map[string]bool, len(groups))
	for i, g := range groups {
		label, _ := displayString(g.value)
		id := columnID + ":" + label
		if parentID != "" {
			id = parentID + ">" + id
		}
		// Distinct values can share a label, such as 1 and "1" or nil and "".
		for n, base := 2, id; used[id]; n++ {
			id = base + "#" + strconv.Itoa(n)
		}
		used[id] = true

		subRows := t.groupUp(g.rows, columns, depth+1, id)
		leafRows := collectLeafRows(subRows)

		row := t.newRow(id, leafRows[0].Original, i, depth, parentID)
		row.GroupingColumnID = columnID
		row.GroupingValue = g.value
		row.SubRows = subRows
		row.LeafRows = leafRows
		row.group = &groupInfo[T]{columns: columns, values: make(map[string]any)}
		out[i] = row
	}
	return out
}

// collectLeafRows returns the data rows under a list of group rows.
func collectLeafRows[T any](rows []*Row[T]) []*Row[T] {
	var leaves []*Row[T]
	for _, r := range rows {
		if r.group != nil {
			leaves = append(leaves, collectLeafRows(r.SubRows)...)
			continue
		}
		leaves = append(leaves, r)
	}
	return leaves
}

// SetGrouping updates the grouping slice.
func (t *Table[T]) SetGrouping(u Updater[GroupingState]) {
	t.options.OnGroupingChange(u)
}

// ResetGrouping restores the initial grouping, or clears it when
// defaultState is true.
func (t *Table[T]) ResetGrouping(defaultState bool) {
	next := GroupingState{}
	if !defaultState && t.initialState.Grouping != nil {
		next = slices.Clone(t.initialState.Grouping)
	}
	t.SetGrouping(Replace(next))
}

// GetCanGroup reports whether the column can be grouped by.
func (c *Column[T]) GetCanGroup() bool {
	return boolOr(c.Def.EnableGrouping, true) &&
		boolOr(c.table.options.EnableGrouping, true) &&
		(c.HasAccessor() || c.Def.GetGroupingValue != nil)
}

// GetIsGrouped reports whether the column is in the grouping slice.
func (c *Column[T]) GetIsGrouped() bool {
	return slices.Contains(c.table.GetState().Grouping, c.ID)
}

// GetGroupedIndex returns the column's position in the grouping slice, or -1.
func (c *Column[T]) GetGroupedIndex() int {
	return slices.Index(c.table.GetState().Grouping, c.ID)
}

// ToggleGrouping adds the column to the grouping slice or removes it.
func (c *Column[T]) ToggleGrouping() {
	c.table.SetGrouping(Modify(func(old GroupingState) GroupingState {
		if slices.Contains(old, c.ID) {
			return slices.DeleteFunc(slices.Clone(old), func(id string) bool { return id == c.ID })
		}
		return append(slices.Clone(old), c.ID)
	}))
}
