package table

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"
)

// ValueKind is the closed set of value shapes the auto filter, sorting and
// aggregation functions dispatch on.
type ValueKind int

const (
	KindUndefined ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindArray
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindOther:
		return "other"
	default:
		return "undefined"
	}
}

// KindOf classifies v. A nil value is KindUndefined.
func KindOf(v any) ValueKind {
	switch x := v.(type) {
	case nil:
		return KindUndefined
	case string:
		return KindString
	case bool:
		return KindBool
	case time.Time, *time.Time:
		return KindDate
	case json.Number:
		return KindNumber
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	default:
		rv := reflect.ValueOf(x)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			return KindArray
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return KindUndefined
			}
			return KindOf(rv.Elem().Interface())
		}
		return KindOther
	}
}

// toFloat converts numeric values to float64. Strings are not parsed.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

// parseFloat converts numbers and numeric strings to float64.
func parseFloat(v any) (float64, bool) {
	if f, ok := toFloat(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// toTime converts date values to time.Time.
func toTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case string:
		t, err := time.Parse(time.RFC3339, x)
		return t, err == nil
	}
	return time.Time{}, false
}

// sortString renders a value for text comparison: strings as is, finite
// numbers in shortest form, everything else as "".
func sortString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// displayString renders a value for substring filters. Missing values render
// as "" and report false.
func displayString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339), true
	case json.Number:
		return x.String(), true
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// listValues returns the elements of a slice or array value.
func listValues(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// looseEqual compares two values, treating numbers of different Go types as
// equal when their float64 values are.
func looseEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Equal(tb)
	}
	if isComparable(a) && isComparable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func isComparable(v any) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}

// groupKey returns a map key for v: v itself when comparable, otherwise its
// formatted text.
func groupKey(v any) any {
	if isComparable(v) {
		if f, ok := toFloat(v); ok {
			return f
		}
		return v
	}
	s, _ := displayString(v)
	return "\x00" + s
}
