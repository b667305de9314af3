package table

import "maps"

// Row is one record in a row model, or a synthetic group row produced by
// grouping. Rows are owned by the RowModel that built them; stages that
// change a subtree build new Rows around the same Original.
type Row[T any] struct {
	Capabilities

	ID       string
	Original T
	Index    int
	Depth    int
	ParentID string
	SubRows  []*Row[T]

	// Set on group rows only.
	GroupingColumnID string
	GroupingValue    any
	LeafRows         []*Row[T]

	// ColumnFilters records, per filter id, whether the row passed it.
	// The global filter is recorded under GlobalFilterID.
	ColumnFilters     map[string]bool
	ColumnFiltersMeta map[string]any

	table *Table[T]
	cache *rowCache
	group *groupInfo[T]
	cells []*Cell[T]
}

// rowCache holds accessor results. Rows derived from the same core row share
// one cache.
type rowCache struct {
	values map[string]any
	unique map[string][]any
}

func newRowCache() *rowCache {
	return &rowCache{
		values: make(map[string]any),
		unique: make(map[string][]any),
	}
}

// Table returns the owning table.
func (r *Row[T]) Table() *Table[T] {
	return r.table
}

// GetValue returns the row's value for a column, or nil when the column does
// not exist or has no accessor. Values are computed once and cached.
func (r *Row[T]) GetValue(columnID string) any {
	if r.group != nil {
		return r.groupValue(columnID)
	}
	if v, ok := r.cache.values[columnID]; ok {
		return v
	}
	col, ok := r.table.GetColumn(columnID)
	if !ok || col.accessor == nil {
		return nil
	}
	v := col.accessor(r.Original, r.Index)
	r.cache.values[columnID] = v
	return v
}

// GetUniqueValues returns the values the row contributes to faceting for a
// column: the column's GetUniqueValues result, or the single value.
func (r *Row[T]) GetUniqueValues(columnID string) []any {
	if r.group != nil {
		return []any{r.GetValue(columnID)}
	}
	if v, ok := r.cache.unique[columnID]; ok {
		return v
	}
	col, ok := r.table.GetColumn(columnID)
	if !ok || col.accessor == nil {
		return nil
	}
	var values []any
	if col.Def.GetUniqueValues != nil {
		values = col.Def.GetUniqueValues(r.Original, r.Index)
	} else {
		values = []any{r.GetValue(columnID)}
	}
	r.cache.unique[columnID] = values
	return values
}

// GetGroupingValue returns the value rows are grouped by for a column.
func (r *Row[T]) GetGroupingValue(columnID string) any {
	col, ok := r.table.GetColumn(columnID)
	if ok && col.Def.GetGroupingValue != nil && r.group == nil {
		return col.Def.GetGroupingValue(r.Original)
	}
	return r.GetValue(columnID)
}

// GetIsGrouped reports whether the row is a group row.
func (r *Row[T]) GetIsGrouped() bool {
	return r.GroupingColumnID != ""
}

// GetParentRow returns the parent row, looked up by ParentID.
func (r *Row[T]) GetParentRow() (*Row[T], bool) {
	if r.ParentID == "" {
		return nil, false
	}
	return r.table.GetRow(r.ParentID, true)
}

// GetParentRows returns the ancestors of the row, root first.
func (r *Row[T]) GetParentRows() []*Row[T] {
	var parents []*Row[T]
	current := r
	for {
		parent, ok := current.GetParentRow()
		if !ok {
			break
		}
		parents = append(parents, parent)
		current = parent
	}
	for i, j := 0, len(parents)-1; i < j; i, j = i+1, j-1 {
		parents[i], parents[j] = parents[j], parents[i]
	}
	return parents
}

// GetLeafRows returns every descendant of the row in pre-order.
func (r *Row[T]) GetLeafRows() []*Row[T] {
	return flattenRows(r.SubRows)
}

// GetAllCells returns one cell per leaf column.
func (r *Row[T]) GetAllCells() []*Cell[T] {
	if r.cells == nil {
		cols := r.table.GetAllLeafColumns()
		r.cells = make([]*Cell[T], len(cols))
		for i, col := range cols {
			r.cells[i] = &Cell[T]{ID: r.ID + "_" + col.ID, Row: r, Column: col}
		}
	}
	return r.cells
}

// GetCell returns the cell for a column.
func (r *Row[T]) GetCell(columnID string) (*Cell[T], bool) {
	for _, c := range r.GetAllCells() {
		if c.Column.ID == columnID {
			return c, true
		}
	}
	return nil, false
}

// newRow allocates a row and runs the feature row hooks on it.
func (t *Table[T]) newRow(id string, original T, index, depth int, parentID string) *Row[T] {
	r := &Row[T]{
		ID:       id,
		Original: original,
		Index:    index,
		Depth:    depth,
		ParentID: parentID,
		table:    t,
		cache:    newRowCache(),
	}
	t.constructRow(r)
	return r
}

// deriveRow builds a new row around src's original, keeping its identity,
// cached values, grouping fields and filter results. SubRows are shared
// until the caller replaces them.
func (t *Table[T]) deriveRow(src *Row[T]) *Row[T] {
	r := &Row[T]{
		ID:                src.ID,
		Original:          src.Original,
		Index:             src.Index,
		Depth:             src.Depth,
		ParentID:          src.ParentID,
		SubRows:           src.SubRows,
		GroupingColumnID:  src.GroupingColumnID,
		GroupingValue:     src.GroupingValue,
		LeafRows:          src.LeafRows,
		ColumnFilters:     maps.Clone(src.ColumnFilters),
		ColumnFiltersMeta: maps.Clone(src.ColumnFiltersMeta),
		table:             t,
		cache:             src.cache,
		group:             src.group,
	}
	t.constructRow(r)
	return r
}

// constructRow runs the feature row hooks.
func (t *Table[T]) constructRow(r *Row[T]) {
	for _, f := range t.rowHooks {
		r.beginHook("row", f.Name)
		f.ConstructRow(t, r)
		r.endHook()
	}
}
