package table

// FacetValue is one distinct value and the number of rows holding it.
type FacetValue struct {
	Value any `json:"value"`
	Count int `json:"count"`
}

// facetCache memoizes the faceting results of one column, or of the global
// filter under GlobalFilterID.
type facetCache[T any] struct {
	model  memo[*RowModel[T]]
	unique memo[[]FacetValue]
	minMax memo[facetRange]
}

type facetRange struct {
	min, max float64
	ok       bool
}

func (t *Table[T]) facetCacheFor(id string) *facetCache[T] {
	fc, ok := t.facets[id]
	if !ok {
		fc = &facetCache[T]{}
		t.facets[id] = fc
	}
	return fc
}

// facetedRowModel returns the reference model faceting summarizes for id,
// per Options.FacetingReference.
func (t *Table[T]) facetedRowModel(id string) *RowModel[T] {
	pre := t.coreRowModel()
	state := t.GetState()

	switch t.options.FacetingReference {
	case FacetFiltered:
		return t.globalFilteredRowModel()
	case FacetOtherFilters:
		fc := t.facetCacheFor(id)
		deps := []any{pre, fingerprint(state.ColumnFilters), fingerprint(state.GlobalFilter)}
		model, _ := fc.model.get(deps, func() *RowModel[T] {
			columnPass, hasColumn := t.columnFilterPredicate(state.ColumnFilters, id)
			var globalPass rowPredicate[T]
			hasGlobal := false
			if id != GlobalFilterID && t.HasFeature(FeatureGlobalFiltering) {
				globalPass, hasGlobal = t.globalFilterPredicate(state.GlobalFilter)
			}
			if len(pre.Rows) == 0 || (!hasColumn && !hasGlobal) {
				return pre
			}
			return t.filterRowModel(pre.Rows, func(row *Row[T]) bool {
				if hasColumn && !columnPass(row) {
					return false
				}
				return !hasGlobal || globalPass(row)
			})
		})
		return model
	}
	return pre
}

func (t *Table[T]) facetedUniqueValues(id string, columns []*Column[T]) []FacetValue {
	model := t.facetedRowModel(id)
	fc := t.facetCacheFor(id)
	values, _ := fc.unique.get([]any{model, t.columnsVersion}, func() []FacetValue {
		var out []FacetValue
		index := make(map[any]int)
		for _, row := range model.FlatRows {
			for _, col := range columns {
				for _, v := range row.GetUniqueValues(col.ID) {
					k := groupKey(v)
					if i, ok := index[k]; ok {
						out[i].Count++
						continue
					}
					index[k] = len(out)
					out = append(out, FacetValue{Value: v, Count: 1})
				}
			}
		}
		return out
	})
	return values
}

func (t *Table[T]) facetedMinMax(id string, columns []*Column[T]) facetRange {
	model := t.facetedRowModel(id)
	fc := t.facetCacheFor(id)
	r, _ := fc.minMax.get([]any{model, t.columnsVersion}, func() facetRange {
		var r facetRange
		for _, row := range model.FlatRows {
			for _, col := range columns {
				for _, v := range row.GetUniqueValues(col.ID) {
					f, ok := toFloat(v)
					if !ok {
						continue
					}
					if !r.ok {
						r = facetRange{min: f, max: f, ok: true}
						continue
					}
					r.min = min(r.min, f)
					r.max = max(r.max, f)
				}
			}
		}
		return r
	})
	return r
}

// flushed runs get and then any resets its computation queued.
func flushed[T, R any](t *Table[T], get func() R) R {
	v := get()
	if t.queue.flush() {
		v = get()
	}
	return v
}

// GetFacetedRowModel returns the row model the column's facets summarize.
func (c *Column[T]) GetFacetedRowModel() *RowModel[T] {
	return flushed(c.table, func() *RowModel[T] { return c.table.facetedRowModel(c.ID) })
}

// GetFacetedUniqueValues returns the column's distinct values with their row
// counts, in first-seen order.
func (c *Column[T]) GetFacetedUniqueValues() []FacetValue {
	return flushed(c.table, func() []FacetValue {
		return c.table.facetedUniqueValues(c.ID, []*Column[T]{c})
	})
}

// GetFacetedMinMaxValues returns the smallest and largest numeric value of
// the column. ok is false when the column has no numeric values.
func (c *Column[T]) GetFacetedMinMaxValues() (lo, hi float64, ok bool) {
	r := flushed(c.table, func() facetRange {
		return c.table.facetedMinMax(c.ID, []*Column[T]{c})
	})
	return r.min, r.max, r.ok
}

// GetGlobalFacetedRowModel returns the row model global facets summarize.
func (t *Table[T]) GetGlobalFacetedRowModel() *RowModel[T] {
	return flushed(t, func() *RowModel[T] { return t.facetedRowModel(GlobalFilterID) })
}

// GetGlobalFacetedUniqueValues returns the distinct values across every
// globally filterable column.
func (t *Table[T]) GetGlobalFacetedUniqueValues() []FacetValue {
	return flushed(t, func() []FacetValue {
		return t.facetedUniqueValues(GlobalFilterID, t.globallyFilterableColumns())
	})
}

// GetGlobalFacetedMinMaxValues returns the numeric range across every
// globally filterable column.
func (t *Table[T]) GetGlobalFacetedMinMaxValues() (lo, hi float64, ok bool) {
	r := flushed(t, func() facetRange {
		return t.facetedMinMax(GlobalFilterID, t.globallyFilterableColumns())
	})
	return r.min, r.max, r.ok
}
