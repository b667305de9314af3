package table

import "slices"

// Names of the built-in aggregation functions.
const (
	AggregateAuto        = "auto"
	AggregateSum         = "sum"
	AggregateMin         = "min"
	AggregateMax         = "max"
	AggregateExtent      = "extent"
	AggregateMean        = "mean"
	AggregateMedian      = "median"
	AggregateUnique      = "unique"
	AggregateUniqueCount = "uniqueCount"
	AggregateCount       = "count"
)

// AggregationFn computes a group row's value for a column. leafRows are the
// data rows under the group; childRows are its direct sub-rows, which are
// themselves group rows when grouping is nested.
type AggregationFn[T any] func(columnID string, leafRows, childRows []*Row[T]) any

func builtinAggregationFn[T any](name string) (AggregationFn[T], bool) {
	switch name {
	case AggregateSum:
		return func(columnID string, _, childRows []*Row[T]) any {
			sum := 0.0
			for _, r := range childRows {
				if f, ok := toFloat(r.GetValue(columnID)); ok {
					sum += f
				}
			}
			return sum
		}, true
	case AggregateMin:
		return func(columnID string, _, childRows []*Row[T]) any {
			lo, _, ok := numericExtent(columnID, childRows)
			if !ok {
				return nil
			}
			return lo
		}, true
	case AggregateMax:
		return func(columnID string, _, childRows []*Row[T]) any {
			_, hi, ok := numericExtent(columnID, childRows)
			if !ok {
				return nil
			}
			return hi
		}, true
	case AggregateExtent:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			lo, hi, ok := numericExtent(columnID, leafRows)
			if !ok {
				return nil
			}
			return []any{lo, hi}
		}, true
	case AggregateMean:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			count, sum := 0, 0.0
			for _, r := range leafRows {
				if f, ok := toFloat(r.GetValue(columnID)); ok {
					count++
					sum += f
				}
			}
			if count == 0 {
				return nil
			}
			return sum / float64(count)
		}, true
	case AggregateMedian:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			if len(leafRows) == 0 {
				return nil
			}
			values := make([]float64, 0, len(leafRows))
			for _, r := range leafRows {
				f, ok := toFloat(r.GetValue(columnID))
				if !ok {
					return nil
				}
				values = append(values, f)
			}
			slices.Sort(values)
			mid := len(values) / 2
			if len(values)%2 != 0 {
				return values[mid]
			}
			return (values[mid-1] + values[mid]) / 2
		}, true
	case AggregateUnique:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			return uniqueValues(columnID, leafRows)
		}, true
	case AggregateUniqueCount:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			return len(uniqueValues(columnID, leafRows))
		}, true
	case AggregateCount:
		return func(_ string, leafRows, _ []*Row[T]) any {
			return len(leafRows)
		}, true
	}
	return nil, false
}

func numericExtent[T any](columnID string, rows []*Row[T]) (lo, hi float64, ok bool) {
	for _, r := range rows {
		f, isNum := toFloat(r.GetValue(columnID))
		if !isNum || f != f {
			continue
		}
		if !ok {
			lo, hi, ok = f, f, true
			continue
		}
		lo = min(lo, f)
		hi = max(hi, f)
	}
	return lo, hi, ok
}

func uniqueValues[T any](columnID string, rows []*Row[T]) []any {
	seen := make(map[any]bool)
	var out []any
	for _, r := range rows {
		v := r.GetValue(columnID)
		k := groupKey(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	return out
}

// GetAutoAggregationFn picks sum for numeric columns and extent for date
// columns. Other columns are not aggregated.
func (c *Column[T]) GetAutoAggregationFn() AggregationFn[T] {
	switch c.Kind() {
	case KindNumber:
		fn, _ := c.table.lookupAggregationFn(AggregateSum)
		return fn
	case KindDate:
		return func(columnID string, leafRows, _ []*Row[T]) any {
			var lo, hi any
			for _, r := range leafRows {
				v := r.GetValue(columnID)
				if KindOf(v) != KindDate {
					continue
				}
				if lo == nil || compareBasic(v, lo) < 0 {
					lo = v
				}
				if hi == nil || compareBasic(v, hi) > 0 {
					hi = v
				}
			}
			if lo == nil {
				return nil
			}
			return []any{lo, hi}
		}
	}
	return nil
}

// GetAggregationFn resolves the column's aggregation function, or nil.
func (c *Column[T]) GetAggregationFn() AggregationFn[T] {
	name := c.Def.AggregationFn
	if name == "" || name == AggregateAuto {
		return c.GetAutoAggregationFn()
	}
	fn, _ := c.table.lookupAggregationFn(name)
	return fn
}

func (t *Table[T]) lookupAggregationFn(name string) (AggregationFn[T], bool) {
	if fn, ok := t.options.AggregationFns[name]; ok {
		return fn, true
	}
	return builtinAggregationFn[T](name)
}
