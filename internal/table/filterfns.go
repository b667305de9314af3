package table

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Names of the built-in filter functions.
const (
	FilterAuto                    = "auto"
	FilterIncludesString          = "includesString"
	FilterIncludesStringSensitive = "includesStringSensitive"
	FilterEqualsString            = "equalsString"
	FilterArrIncludes             = "arrIncludes"
	FilterArrIncludesAll          = "arrIncludesAll"
	FilterArrIncludesSome         = "arrIncludesSome"
	FilterEquals                  = "equals"
	FilterWeakEquals              = "weakEquals"
	FilterInNumberRange           = "inNumberRange"
	FilterCompare                 = "compare"
)

// FilterFn is a row predicate for one column and filter value.
//
// Fn may call addMeta to attach metadata to the row under the filter's id.
// ResolveFilterValue normalizes the stored filter value once per stage run.
// AutoRemove reports values that should remove the filter instead of
// applying it.
type FilterFn[T any] struct {
	Fn                 func(row *Row[T], columnID string, filterValue any, addMeta func(meta any)) bool
	ResolveFilterValue func(value any) any
	AutoRemove         func(value any, column *Column[T]) bool
}

// Comparison is one operand of the compare filter. Op is one of
// "=", "!=", "<", "<=", ">", ">=" or ":" (contains).
type Comparison struct {
	Op      string `json:"op"`
	Operand any    `json:"operand"`
}

// valueFilter adapts a predicate over the cell value.
func valueFilter[T any](pred func(value, filterValue any) bool) func(*Row[T], string, any, func(any)) bool {
	return func(row *Row[T], columnID string, filterValue any, _ func(any)) bool {
		return pred(row.GetValue(columnID), filterValue)
	}
}

func builtinFilterFn[T any](name string) (*FilterFn[T], bool) {
	switch name {
	case FilterIncludesString:
		return &FilterFn[T]{
			Fn:         valueFilter[T](includesString),
			AutoRemove: testFalsey[T],
		}, true
	case FilterIncludesStringSensitive:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				s, ok := displayString(value)
				search, _ := displayString(filterValue)
				return ok && strings.Contains(s, search)
			}),
			AutoRemove: testFalsey[T],
		}, true
	case FilterEqualsString:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				s, ok := displayString(value)
				want, _ := displayString(filterValue)
				return ok && fold(s) == fold(want)
			}),
			AutoRemove: testFalsey[T],
		}, true
	case FilterArrIncludes:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				return containsValue(value, filterValue)
			}),
			AutoRemove: testFalseyOrEmpty[T],
		}, true
	case FilterArrIncludesAll:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				wants, _ := listValues(filterValue)
				for _, w := range wants {
					if !containsValue(value, w) {
						return false
					}
				}
				return true
			}),
			AutoRemove: testFalseyOrEmpty[T],
		}, true
	case FilterArrIncludesSome:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				wants, _ := listValues(filterValue)
				for _, w := range wants {
					if containsValue(value, w) {
						return true
					}
				}
				return false
			}),
			AutoRemove: testFalseyOrEmpty[T],
		}, true
	case FilterEquals:
		return &FilterFn[T]{
			Fn:         valueFilter[T](looseEqual),
			AutoRemove: testFalsey[T],
		}, true
	case FilterWeakEquals:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				if looseEqual(value, filterValue) {
					return true
				}
				a, aok := displayString(value)
				b, bok := displayString(filterValue)
				return aok && bok && a == b
			}),
			AutoRemove: testFalsey[T],
		}, true
	case FilterInNumberRange:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				r, ok := filterValue.(numberRange)
				if !ok {
					r = resolveNumberRange(filterValue).(numberRange)
				}
				f, ok := toFloat(value)
				return ok && f >= r.min && f <= r.max
			}),
			ResolveFilterValue: resolveNumberRange,
			AutoRemove: func(value any, _ *Column[T]) bool {
				if falsey(value) {
					return true
				}
				l, ok := listValues(value)
				if !ok || len(l) == 0 {
					return true
				}
				return falsey(l[0]) && (len(l) < 2 || falsey(l[1]))
			},
		}, true
	case FilterCompare:
		return &FilterFn[T]{
			Fn: valueFilter[T](func(value, filterValue any) bool {
				cmps, ok := filterValue.([]Comparison)
				if !ok {
					cmps = resolveComparisons(filterValue).([]Comparison)
				}
				for _, c := range cmps {
					if !c.Match(value) {
						return false
					}
				}
				return true
			}),
			ResolveFilterValue: resolveComparisons,
			AutoRemove: func(value any, _ *Column[T]) bool {
				return falsey(value) || len(resolveComparisons(value).([]Comparison)) == 0
			},
		}, true
	}
	return nil, false
}

// globalAutoFilter compares numerically against numeric cells when the
// filter value is numeric, and falls back to a case-insensitive substring
// match.
func globalAutoFilter[T any]() *FilterFn[T] {
	return &FilterFn[T]{
		Fn: valueFilter[T](func(value, filterValue any) bool {
			if KindOf(value) == KindNumber {
				if want, ok := parseFloat(filterValue); ok {
					if got, _ := toFloat(value); got == want {
						return true
					}
				}
			}
			return includesString(value, filterValue)
		}),
		AutoRemove: testFalsey[T],
	}
}

func includesString(value, filterValue any) bool {
	s, ok := displayString(value)
	if !ok {
		return false
	}
	search, _ := displayString(filterValue)
	return strings.Contains(fold(s), fold(search))
}

// fold returns the case-folded form of s for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsValue(list, want any) bool {
	items, ok := listValues(list)
	if !ok {
		return false
	}
	for _, item := range items {
		if looseEqual(item, want) {
			return true
		}
	}
	return false
}

func falsey(v any) bool {
	return v == nil || v == ""
}

func testFalsey[T any](v any, _ *Column[T]) bool {
	return falsey(v)
}

func testFalseyOrEmpty[T any](v any, _ *Column[T]) bool {
	if falsey(v) {
		return true
	}
	l, ok := listValues(v)
	return !ok || len(l) == 0
}

type numberRange struct {
	min, max float64
}

// resolveNumberRange turns a [min, max] pair into a numberRange. Missing or
// unparsable ends are unbounded; reversed ends are swapped.
func resolveNumberRange(v any) any {
	r := numberRange{min: math.Inf(-1), max: math.Inf(1)}
	l, _ := listValues(v)
	if len(l) > 0 && l[0] != nil {
		if f, ok := parseFloat(l[0]); ok {
			r.min = f
		}
	}
	if len(l) > 1 && l[1] != nil {
		if f, ok := parseFloat(l[1]); ok {
			r.max = f
		}
	}
	if r.min > r.max {
		r.min, r.max = r.max, r.min
	}
	return r
}

// resolveComparisons accepts a Comparison, a []Comparison, or their generic
// JSON forms.
func resolveComparisons(v any) any {
	switch x := v.(type) {
	case []Comparison:
		return x
	case Comparison:
		return []Comparison{x}
	case nil:
		return []Comparison{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return []Comparison{}
	}
	var list []Comparison
	if err := json.Unmarshal(data, &list); err == nil {
		return list
	}
	var one Comparison
	if err := json.Unmarshal(data, &one); err == nil && one.Op != "" {
		return []Comparison{one}
	}
	return []Comparison{}
}

// Match reports whether value satisfies the comparison. Numbers compare
// numerically, dates chronologically and everything else as case-folded
// text. A missing value only matches "!=".
func (c Comparison) Match(value any) bool {
	if value == nil {
		return c.Op == "!="
	}
	if c.Op == ":" {
		return includesString(value, c.Operand)
	}

	var cmp int
	switch {
	case KindOf(value) == KindNumber:
		want, ok := parseFloat(c.Operand)
		if !ok {
			return c.Op == "!="
		}
		got, _ := toFloat(value)
		cmp = compareOrdered(got, want)
	case KindOf(value) == KindDate:
		got, _ := toTime(value)
		want, ok := toTime(c.Operand)
		if !ok {
			return c.Op == "!="
		}
		cmp = compareTime(got, want)
	default:
		got, _ := displayString(value)
		want, _ := displayString(c.Operand)
		cmp = strings.Compare(fold(got), fold(want))
	}

	switch c.Op {
	case "=", "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func compareOrdered[N int | float64 | string](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}
