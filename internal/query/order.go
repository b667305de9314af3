package query

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/ordering"

	"github.com/roach88/tablecore/internal/table"
)

// ParseOrderBy parses an AIP-132 order_by string into sorting state. Every
// path must be a field in fields. Returns an empty state for an empty
// string.
func ParseOrderBy(orderBy string, fields Fields) (table.SortingState, error) {
	if strings.TrimSpace(orderBy) == "" {
		return table.SortingState{}, nil
	}

	var o ordering.OrderBy
	if err := o.UnmarshalString(orderBy); err != nil {
		return nil, fmt.Errorf("parse order_by: %w", err)
	}
	if err := o.ValidateForPaths(fields.Paths()...); err != nil {
		return nil, fmt.Errorf("parse order_by: %w", err)
	}

	sorting := make(table.SortingState, 0, len(o.Fields))
	seen := make(map[string]bool, len(o.Fields))
	for _, f := range o.Fields {
		if seen[f.Path] {
			return nil, fmt.Errorf("parse order_by: %s listed twice", f.Path)
		}
		seen[f.Path] = true
		sorting = append(sorting, table.ColumnSort{ID: f.Path, Desc: f.Desc})
	}
	return sorting, nil
}

// FormatOrderBy renders sorting state as an order_by string.
func FormatOrderBy(sorting table.SortingState) string {
	parts := make([]string, len(sorting))
	for i, s := range sorting {
		parts[i] = s.ID
		if s.Desc {
			parts[i] += " desc"
		}
	}
	return strings.Join(parts, ", ")
}
