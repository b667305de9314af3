package compiler

import (
	"fmt"

	"github.com/roach88/tablecore/internal/table"
)

// Validation error codes (E100-E199)
const (
	// Column errors (E101-E109)
	ErrNoColumns          = "E101" // at least one column required
	ErrColumnNoID         = "E102" // column needs id or accessorKey
	ErrDuplicateColumn    = "E103" // two columns resolve to one id
	ErrUnknownFilterFn    = "E104" // filterFn not built in
	ErrUnknownSortingFn   = "E105" // sortingFn not built in
	ErrUnknownAggregation = "E106" // aggregationFn not built in
	ErrInvalidUndefined   = "E107" // sortUndefined not first|last|none

	// Feature and option errors (E110-E119)
	ErrUnknownFeature   = "E110" // feature name not in the catalog
	ErrDuplicateFeature = "E111" // feature listed twice
	ErrInvalidFaceting  = "E112" // facetingReference not recognized
	ErrInvalidOption    = "E113" // out-of-range option value

	// Initial state errors (E120-E129)
	ErrUnknownStateColumn = "E120" // state refers to a missing column
	ErrInvalidPagination  = "E121" // negative page index or size
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"` // CUE source line, when known
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled spec against the table's rules.
// Returns all errors found (does not fail-fast).
func Validate(spec *TableSpec) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if len(spec.Columns) == 0 {
		add(ErrNoColumns, "columns", "at least one column is required")
	}

	ids := make(map[string]bool, len(spec.Columns))
	for i, col := range spec.Columns {
		field := fmt.Sprintf("columns[%d]", i)
		id := col.ColumnID()
		switch {
		case id == "":
			add(ErrColumnNoID, field, "column needs an id or accessorKey")
		case ids[id]:
			add(ErrDuplicateColumn, field, "duplicate column id %q", id)
		default:
			ids[id] = true
		}
		if col.FilterFn != "" && !table.IsBuiltinFilterFn(col.FilterFn) {
			add(ErrUnknownFilterFn, field+".filterFn", "unknown filter function %q", col.FilterFn)
		}
		if col.SortingFn != "" && !table.IsBuiltinSortingFn(col.SortingFn) {
			add(ErrUnknownSortingFn, field+".sortingFn", "unknown sorting function %q", col.SortingFn)
		}
		if col.AggregationFn != "" && !table.IsBuiltinAggregationFn(col.AggregationFn) {
			add(ErrUnknownAggregation, field+".aggregationFn", "unknown aggregation function %q", col.AggregationFn)
		}
		switch table.SortUndefined(col.SortUndefined) {
		case "", table.SortUndefinedFirst, table.SortUndefinedLast, table.SortUndefinedNone:
		default:
			add(ErrInvalidUndefined, field+".sortUndefined", "must be first, last or none, got %q", col.SortUndefined)
		}
	}

	seen := make(map[string]bool, len(spec.Features))
	for i, name := range spec.Features {
		field := fmt.Sprintf("features[%d]", i)
		if !KnownFeature(name) {
			add(ErrUnknownFeature, field, "unknown feature %q (known: %v)", name, FeatureNames())
		}
		if seen[name] {
			add(ErrDuplicateFeature, field, "feature %q listed twice", name)
		}
		seen[name] = true
	}

	o := spec.Options
	switch table.FacetingReference(o.FacetingReference) {
	case "", table.FacetPreFiltered, table.FacetOtherFilters, table.FacetFiltered:
	default:
		add(ErrInvalidFaceting, "options.facetingReference", "unknown faceting reference %q", o.FacetingReference)
	}
	if o.GlobalFilterFn != "" && !table.IsBuiltinFilterFn(o.GlobalFilterFn) {
		add(ErrUnknownFilterFn, "options.globalFilterFn", "unknown filter function %q", o.GlobalFilterFn)
	}
	if o.MaxLeafRowFilterDepth != nil && *o.MaxLeafRowFilterDepth < 0 {
		add(ErrInvalidOption, "options.maxLeafRowFilterDepth", "must not be negative")
	}
	if o.MaxMultiSortColCount < 0 {
		add(ErrInvalidOption, "options.maxMultiSortColCount", "must not be negative")
	}

	s := spec.InitialState
	checkColumn := func(field, id string) {
		if !ids[id] {
			add(ErrUnknownStateColumn, field, "unknown column %q", id)
		}
	}
	for i, f := range s.ColumnFilters {
		checkColumn(fmt.Sprintf("initial_state.columnFilters[%d]", i), f.ID)
	}
	for i, sort := range s.Sorting {
		checkColumn(fmt.Sprintf("initial_state.sorting[%d]", i), sort.ID)
	}
	for i, id := range s.Grouping {
		checkColumn(fmt.Sprintf("initial_state.grouping[%d]", i), id)
	}
	if s.Pagination.PageIndex < 0 || s.Pagination.PageSize < 0 {
		add(ErrInvalidPagination, "initial_state.pagination", "page index and size must not be negative")
	}

	return errs
}
