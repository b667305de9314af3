package table

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnDef declares one column. Header, Footer and Cell are render
// descriptors passed through untouched to whatever renders the table.
//
// FilterFn, SortingFn and AggregationFn name a function in the table's
// option maps or the built-in tables; empty means "auto".
type ColumnDef[T any] struct {
	ID          string
	AccessorKey string
	AccessorFn  func(original T, index int) any

	Header any
	Footer any
	Cell   any
	Meta   map[string]any

	FilterFn      string
	SortingFn     string
	AggregationFn string

	SortUndefined SortUndefined
	SortDescFirst *bool
	InvertSorting bool

	EnableColumnFilter *bool
	EnableGlobalFilter *bool
	EnableSorting      *bool
	EnableMultiSort    *bool
	EnableGrouping     *bool

	GetGroupingValue func(original T) any
	GetUniqueValues  func(original T, index int) []any
}

// Column is a resolved column definition plus the capabilities features
// attached to it.
type Column[T any] struct {
	Capabilities

	ID    string
	Def   ColumnDef[T]
	Index int
	Depth int

	table    *Table[T]
	accessor func(original T, index int) any
}

// HasAccessor reports whether the column reads values from records.
func (c *Column[T]) HasAccessor() bool {
	return c.accessor != nil
}

// Table returns the owning table.
func (c *Column[T]) Table() *Table[T] {
	return c.table
}

// Header is a header cell for one column.
type Header[T any] struct {
	Capabilities

	ID      string
	Index   int
	Depth   int
	ColSpan int
	Column  *Column[T]

	table *Table[T]
}

// Cell is one row's value for one column.
type Cell[T any] struct {
	ID     string
	Row    *Row[T]
	Column *Column[T]
}

// GetValue returns the row's value for the cell's column.
func (c *Cell[T]) GetValue() any {
	return c.Row.GetValue(c.Column.ID)
}

// RenderValue returns the value or the table's fallback for missing values.
func (c *Cell[T]) RenderValue() any {
	if v := c.GetValue(); v != nil {
		return v
	}
	return c.Row.table.options.RenderFallbackValue
}

// columnID resolves a definition's id: ID, else AccessorKey with dots
// replaced by underscores, else a string Header.
func columnID[T any](def ColumnDef[T]) (string, error) {
	switch {
	case def.ID != "":
		return def.ID, nil
	case def.AccessorKey != "":
		return strings.ReplaceAll(def.AccessorKey, ".", "_"), nil
	}
	if h, ok := def.Header.(string); ok && h != "" {
		return h, nil
	}
	return "", ErrColumnID
}

// ColumnIDOf returns the id New would give def, or "" when def has none.
func ColumnIDOf[T any](def ColumnDef[T]) string {
	id, _ := columnID(def)
	return id
}

// newColumn resolves def into a Column. Feature hooks are run by the caller.
func newColumn[T any](t *Table[T], def ColumnDef[T], index int) (*Column[T], error) {
	id, err := columnID(def)
	if err != nil {
		return nil, fmt.Errorf("column %d: %w", index, err)
	}
	c := &Column[T]{
		ID:    id,
		Def:   def,
		Index: index,
		table: t,
	}
	switch {
	case def.AccessorFn != nil:
		c.accessor = def.AccessorFn
	case def.AccessorKey != "":
		c.accessor = keyPathAccessor[T](def.AccessorKey)
	}
	return c, nil
}

// keyPathAccessor reads a dotted key path from maps with string keys and
// from struct fields. A struct field matches by name, then by json tag, then
// by name ignoring case. Missing keys yield nil.
func keyPathAccessor[T any](key string) func(T, int) any {
	var path []string
	if strings.Contains(key, ".") {
		path = strings.Split(key, ".")
	} else {
		path = []string{key}
	}
	fields := make(map[fieldKey][]int)

	return func(original T, _ int) any {
		v := reflect.ValueOf(any(original))
		for _, seg := range path {
			v = indirect(v)
			if !v.IsValid() {
				return nil
			}
			switch v.Kind() {
			case reflect.Map:
				if v.Type().Key().Kind() != reflect.String {
					return nil
				}
				v = v.MapIndex(reflect.ValueOf(seg).Convert(v.Type().Key()))
			case reflect.Struct:
				fk := fieldKey{typ: v.Type(), name: seg}
				idx, ok := fields[fk]
				if !ok {
					idx = findField(v.Type(), seg)
					fields[fk] = idx
				}
				if idx == nil {
					return nil
				}
				v = v.FieldByIndex(idx)
			default:
				return nil
			}
		}
		v = indirect(v)
		if !v.IsValid() || !v.CanInterface() {
			return nil
		}
		return v.Interface()
	}
}

type fieldKey struct {
	typ  reflect.Type
	name string
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func findField(typ reflect.Type, name string) []int {
	if f, ok := typ.FieldByName(name); ok && f.IsExported() {
		return f.Index
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name {
			return f.Index
		}
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.IsExported() && strings.EqualFold(f.Name, name) {
			return f.Index
		}
	}
	return nil
}

// GetAllColumns returns the columns in definition order.
func (t *Table[T]) GetAllColumns() []*Column[T] {
	return t.columns
}

// GetAllLeafColumns returns the columns that carry values. Column groups are
// not modelled, so every column is a leaf.
func (t *Table[T]) GetAllLeafColumns() []*Column[T] {
	return t.columns
}

// GetColumn looks a column up by id.
func (t *Table[T]) GetColumn(id string) (*Column[T], bool) {
	c, ok := t.columnsByID[id]
	return c, ok
}

// GetFlatHeaders returns one header per column.
func (t *Table[T]) GetFlatHeaders() []*Header[T] {
	return t.headers
}
