package table

import (
	"regexp"
	"strconv"
	"strings"
)

// Names of the built-in sorting functions.
const (
	SortAuto                      = "auto"
	SortAlphanumeric              = "alphanumeric"
	SortAlphanumericCaseSensitive = "alphanumericCaseSensitive"
	SortText                      = "text"
	SortTextCaseSensitive         = "textCaseSensitive"
	SortNumeric                   = "numeric"
	SortDatetime                  = "datetime"
	SortBasic                     = "basic"
)

// SortingFn orders two rows by one column, returning a negative number,
// zero or a positive number.
type SortingFn[T any] func(a, b *Row[T], columnID string) int

// valueSort adapts a comparison of cell values.
func valueSort[T any](cmp func(a, b any) int) SortingFn[T] {
	return func(a, b *Row[T], columnID string) int {
		return cmp(a.GetValue(columnID), b.GetValue(columnID))
	}
}

func builtinSortingFn[T any](name string) (SortingFn[T], bool) {
	switch name {
	case SortAlphanumeric:
		return valueSort[T](func(a, b any) int {
			return compareAlphanumeric(fold(sortString(a)), fold(sortString(b)))
		}), true
	case SortAlphanumericCaseSensitive:
		return valueSort[T](func(a, b any) int {
			return compareAlphanumeric(sortString(a), sortString(b))
		}), true
	case SortText:
		return valueSort[T](func(a, b any) int {
			return strings.Compare(fold(sortString(a)), fold(sortString(b)))
		}), true
	case SortTextCaseSensitive:
		return valueSort[T](func(a, b any) int {
			return strings.Compare(sortString(a), sortString(b))
		}), true
	case SortNumeric:
		return valueSort[T](compareNumeric), true
	case SortDatetime:
		return valueSort[T](func(a, b any) int {
			ta, aok := toTime(a)
			tb, bok := toTime(b)
			switch {
			case aok && bok:
				return compareTime(ta, tb)
			case aok:
				return 1
			case bok:
				return -1
			}
			return 0
		}), true
	case SortBasic:
		return valueSort[T](compareBasic), true
	}
	return nil, false
}

// compareNumeric orders numbers and numeric strings; values that are not
// numeric sort before those that are.
func compareNumeric(a, b any) int {
	fa, aok := parseFloat(a)
	fb, bok := parseFloat(b)
	switch {
	case aok && bok:
		return compareOrdered(fa, fb)
	case aok:
		return 1
	case bok:
		return -1
	}
	return 0
}

// compareBasic orders values of the same kind with their natural order.
// A missing value sorts before a present one; mixed kinds are equal.
func compareBasic(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		}
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return compareOrdered(fa, fb)
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return compareOrdered(sa, sb)
		}
	}
	if ta, ok := toTime(a); ok && KindOf(a) == KindDate {
		if tb, ok := toTime(b); ok {
			return compareTime(ta, tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok && ba != bb {
			if ba {
				return 1
			}
			return -1
		}
	}
	return 0
}

var reDigits = regexp.MustCompile(`[0-9]+`)

// splitAlphanumeric splits s into alternating runs of digits and
// non-digits, dropping empty runs.
func splitAlphanumeric(s string) []string {
	var parts []string
	last := 0
	for _, loc := range reDigits.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parts = append(parts, s[last:loc[0]])
		}
		parts = append(parts, s[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return parts
}

// compareAlphanumeric is a natural sort: digit runs compare as integers,
// other runs as text, and a text run sorts before a digit run.
func compareAlphanumeric(a, b string) int {
	ap := splitAlphanumeric(a)
	bp := splitAlphanumeric(b)

	for len(ap) > 0 && len(bp) > 0 {
		aa, bb := ap[0], bp[0]
		ap, bp = ap[1:], bp[1:]

		an, aErr := strconv.Atoi(aa)
		bn, bErr := strconv.Atoi(bb)

		switch {
		case aErr != nil && bErr != nil:
			if c := strings.Compare(aa, bb); c != 0 {
				return c
			}
		case aErr != nil:
			return -1
		case bErr != nil:
			return 1
		default:
			if c := compareOrdered(an, bn); c != 0 {
				return c
			}
		}
	}
	return len(ap) - len(bp)
}
