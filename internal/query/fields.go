package query

import (
	"math"
	"sort"

	"go.einride.tech/aip/filtering"

	"github.com/roach88/tablecore/internal/table"
)

// FieldType is the declared type of a filterable column.
type FieldType string

const (
	FieldString    FieldType = "string"
	FieldInt       FieldType = "int"
	FieldFloat     FieldType = "float"
	FieldBool      FieldType = "bool"
	FieldTimestamp FieldType = "timestamp"
)

// Fields maps column ids to their declared types.
type Fields map[string]FieldType

// Paths returns the field names in sorted order.
func (f Fields) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// InferFields declares every column of t that has an accessor, typed by
// the values in the core row model. Numeric columns are int when every
// value is integral. Columns with no values are declared as strings.
func InferFields[T any](t *table.Table[T]) Fields {
	rows := t.GetCoreRowModel().FlatRows
	fields := make(Fields)
	for _, col := range t.GetAllLeafColumns() {
		if !col.HasAccessor() {
			continue
		}
		fields[col.ID] = inferType(col.ID, rows)
	}
	return fields
}

func inferType[T any](columnID string, rows []*table.Row[T]) FieldType {
	typ := FieldType("")
	for _, r := range rows {
		v := r.GetValue(columnID)
		switch table.KindOf(v) {
		case table.KindUndefined:
			continue
		case table.KindNumber:
			if typ == FieldFloat {
				continue
			}
			if isIntegral(v) {
				typ = FieldInt
			} else {
				typ = FieldFloat
			}
		case table.KindBool:
			return FieldBool
		case table.KindDate:
			return FieldTimestamp
		default:
			return FieldString
		}
	}
	if typ == "" {
		return FieldString
	}
	return typ
}

func isIntegral(v any) bool {
	switch x := v.(type) {
	case float64:
		return x == math.Trunc(x) && !math.IsInf(x, 0)
	case float32:
		return float64(x) == math.Trunc(float64(x))
	}
	return true
}

// declarations builds the AIP declarations for fields.
func (f Fields) declarations() (*filtering.Declarations, error) {
	decls := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, name := range f.Paths() {
		var typ = filtering.TypeString
		switch f[name] {
		case FieldInt:
			typ = filtering.TypeInt
		case FieldFloat:
			typ = filtering.TypeFloat
		case FieldBool:
			typ = filtering.TypeBool
		case FieldTimestamp:
			typ = filtering.TypeTimestamp
		}
		decls = append(decls, filtering.DeclareIdent(name, typ))
	}
	return filtering.NewDeclarations(decls...)
}
