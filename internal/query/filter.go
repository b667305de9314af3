package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	"github.com/roach88/tablecore/internal/table"
)

// ErrUnsupported is returned for filter expressions that have no
// column-filter form.
var ErrUnsupported = errors.New("unsupported filter expression")

// comparisonOps maps AIP function names to compare filter operators.
var comparisonOps = map[string]string{
	"=":    "=",
	"_==_": "=",
	"!=":   "!=",
	"_!=_": "!=",
	"<":    "<",
	"_<_":  "<",
	"<=":   "<=",
	"_<=_": "<=",
	">":    ">",
	"_>_":  ">",
	">=":   ">=",
	"_>=_": ">=",
	":":    ":",
}

// ParseFilter parses an AIP-160 filter over fields into column filters.
// Columns appear in the order they are first referenced. Returns an empty
// state for an empty filter string.
func ParseFilter(filterStr string, fields Fields) (table.ColumnFiltersState, error) {
	if strings.TrimSpace(filterStr) == "" {
		return table.ColumnFiltersState{}, nil
	}

	decls, err := fields.declarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, fmt.Errorf("parse filter: %w", err)
	}

	c := &collector{fields: fields, byColumn: make(map[string][]table.Comparison)}
	if err := c.walk(filter.CheckedExpr.GetExpr()); err != nil {
		return nil, err
	}
	return c.state(), nil
}

// collector gathers the ANDed comparisons per column.
type collector struct {
	fields   Fields
	order    []string
	byColumn map[string][]table.Comparison
}

func (c *collector) state() table.ColumnFiltersState {
	out := make(table.ColumnFiltersState, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, table.ColumnFilter{ID: id, Value: c.byColumn[id]})
	}
	return out
}

func (c *collector) walk(e *expr.Expr) error {
	if e == nil {
		return nil
	}

	call, ok := e.ExprKind.(*expr.Expr_CallExpr)
	if !ok {
		return fmt.Errorf("%w: %T at top level", ErrUnsupported, e.ExprKind)
	}

	fn := call.CallExpr.Function
	switch fn {
	case "AND", "_&&_", "FUZZY":
		for _, arg := range call.CallExpr.Args {
			if err := c.walk(arg); err != nil {
				return err
			}
		}
		return nil
	case "OR", "_||_":
		return fmt.Errorf("%w: OR", ErrUnsupported)
	case "NOT", "-", "!_":
		return fmt.Errorf("%w: NOT", ErrUnsupported)
	}

	op, ok := comparisonOps[fn]
	if !ok {
		return fmt.Errorf("%w: function %s", ErrUnsupported, fn)
	}
	return c.comparison(op, call.CallExpr.Args)
}

func (c *collector) comparison(op string, args []*expr.Expr) error {
	if len(args) != 2 {
		return fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return err
	}
	if _, ok := c.fields[field]; !ok {
		return fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}

	if _, seen := c.byColumn[field]; !seen {
		c.order = append(c.order, field)
	}
	c.byColumn[field] = append(c.byColumn[field], table.Comparison{Op: op, Operand: value})
	return nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue returns the timestamp as an RFC 3339 string so the
// filter state stays JSON-serializable.
func extractTimestampValue(e *expr.Expr) (string, error) {
	kind, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return "", fmt.Errorf("timestamp argument must be a constant string")
	}
	s, ok := kind.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return "", fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, s.StringValue)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp format: %s", s.StringValue)
	}
	return t.UTC().Format(time.RFC3339), nil
}
