package table

import "strconv"

// RowModel is the output of one pipeline stage: a row tree, its pre-order
// flattening and an id index over the flattening.
//
// For every model built by the pipeline len(FlatRows) == len(RowsByID) and
// RowsByID[r.ID] == r for each r in FlatRows. The expanded stage is the one
// exception to "Rows is the top level": there Rows is the display sequence.
type RowModel[T any] struct {
	Rows     []*Row[T]
	FlatRows []*Row[T]
	RowsByID map[string]*Row[T]
}

// newRowModel indexes rows in pre-order. Duplicate ids are a caller error;
// with Options.Debug set they are logged and the first row wins.
func (t *Table[T]) newRowModel(rows []*Row[T]) *RowModel[T] {
	flat := flattenRows(rows)
	byID := make(map[string]*Row[T], len(flat))
	for _, r := range flat {
		if _, dup := byID[r.ID]; dup {
			if t.options.Debug {
				t.logger.Error("duplicate row id", "id", r.ID)
			}
			continue
		}
		byID[r.ID] = r
	}
	return &RowModel[T]{Rows: rows, FlatRows: flat, RowsByID: byID}
}

// flattenRows returns rows and all their descendants, each parent
// immediately followed by its subtree.
func flattenRows[T any](rows []*Row[T]) []*Row[T] {
	flat := make([]*Row[T], 0, len(rows))
	var walk func([]*Row[T])
	walk = func(rs []*Row[T]) {
		for _, r := range rs {
			flat = append(flat, r)
			if len(r.SubRows) > 0 {
				walk(r.SubRows)
			}
		}
	}
	walk(rows)
	return flat
}

// rowID derives the id of a record at index under parent.
func (t *Table[T]) rowID(original T, index int, parent *Row[T]) string {
	if t.options.GetRowID != nil {
		return t.options.GetRowID(original, index, parent)
	}
	if parent != nil {
		return parent.ID + "." + strconv.Itoa(index)
	}
	return strconv.Itoa(index)
}

// buildRows materializes records and, through GetSubRows, their sub-records.
// There is no depth bound; sub-row trees must be finite.
func (t *Table[T]) buildRows(originals []T, depth int, parent *Row[T]) []*Row[T] {
	rows := make([]*Row[T], 0, len(originals))
	for i, original := range originals {
		parentID := ""
		if parent != nil {
			parentID = parent.ID
		}
		row := t.newRow(t.rowID(original, i, parent), original, i, depth, parentID)
		if t.options.GetSubRows != nil {
			if subs := t.options.GetSubRows(original, i); len(subs) > 0 {
				row.SubRows = t.buildRows(subs, depth+1, row)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// buildCoreRowModel builds the row tree directly from the caller's data.
func (t *Table[T]) buildCoreRowModel() *RowModel[T] {
	return t.newRowModel(t.buildRows(t.options.Data, 0, nil))
}
