package table

import "log/slog"

// Stage names one step of the row-model pipeline.
type Stage string

const (
	StageCore           Stage = "core"
	StageColumnFiltered Stage = "columnFiltered"
	StageGlobalFiltered Stage = "globalFiltered"
	StageGrouped        Stage = "grouped"
	StageSorted         Stage = "sorted"
	StageExpanded       Stage = "expanded"
	StagePaginated      Stage = "paginated"
)

// FacetingReference selects the row model faceting summarizes.
type FacetingReference string

const (
	// FacetPreFiltered summarizes the rows before any filter is applied.
	FacetPreFiltered FacetingReference = "pre-filtered"
	// FacetOtherFilters applies every active filter except the column's own.
	FacetOtherFilters FacetingReference = "other-filters"
	// FacetFiltered summarizes the fully filtered rows.
	FacetFiltered FacetingReference = "filtered"
)

// SortUndefined places rows without a value for a sort key.
type SortUndefined string

const (
	// SortUndefinedLast puts missing values after every present value.
	SortUndefinedLast SortUndefined = "last"
	// SortUndefinedFirst puts missing values before every present value.
	SortUndefinedFirst SortUndefined = "first"
	// SortUndefinedNone hands missing values to the sorting function.
	SortUndefinedNone SortUndefined = "none"
)

// DefaultMaxLeafRowFilterDepth bounds filter recursion into sub-rows.
const DefaultMaxLeafRowFilterDepth = 100

// Options configures a Table. Zero-valued fields take the defaults
// contributed by the registered features.
//
// Optional booleans are *bool so "unset" can fall back to a default; use
// Bool to build them inline.
type Options[T any] struct {
	Data    []T
	Columns []ColumnDef[T]

	// Features are registered after the base features, in order.
	// BaseFeatures replaces the stock feature list when non-nil.
	Features     []*Feature[T]
	BaseFeatures []*Feature[T]

	// State, when set, makes the table controlled: reads come from *State
	// and writes go only through OnStateChange.
	State         *State
	InitialState  State
	OnStateChange OnChangeFn[State]

	// GetRowID derives a row id. The default is the positional index, joined
	// to the parent id with "." for sub-rows.
	GetRowID     func(original T, index int, parent *Row[T]) string
	GetSubRows   func(original T, index int) []T
	MergeOptions func(defaults, options Options[T]) Options[T]

	Logger *slog.Logger
	// Debug enables integrity checks such as duplicate row id detection.
	Debug bool
	// RenderFallbackValue is what Cell.RenderValue returns for missing values.
	RenderFallbackValue any

	ManualFiltering  bool
	ManualGrouping   bool
	ManualSorting    bool
	ManualExpanding  bool
	ManualPagination bool

	AutoResetAll       *bool
	AutoResetPageIndex *bool
	AutoResetExpanded  *bool

	// Filtering.
	EnableFilters            *bool
	EnableColumnFilters      *bool
	EnableGlobalFilter       *bool
	FilterFromLeafRows       bool
	// MaxLeafRowFilterDepth caps filter recursion into sub-rows. Nil means
	// DefaultMaxLeafRowFilterDepth; 0 filters every root as a leaf.
	MaxLeafRowFilterDepth    *int
	FilterFns                map[string]*FilterFn[T]
	GlobalFilterFn           string
	GetColumnCanGlobalFilter func(column *Column[T]) bool
	FacetingReference        FacetingReference
	OnColumnFiltersChange    OnChangeFn[ColumnFiltersState]
	OnGlobalFilterChange     OnChangeFn[any]

	// Grouping.
	EnableGrouping   *bool
	AggregationFns   map[string]AggregationFn[T]
	OnGroupingChange OnChangeFn[GroupingState]

	// Sorting.
	EnableSorting        *bool
	EnableMultiSort      *bool
	EnableSortingRemoval *bool
	EnableMultiRemove    *bool
	MaxMultiSortColCount int
	SortDescFirst        *bool
	SortingFns           map[string]SortingFn[T]
	OnSortingChange      OnChangeFn[SortingState]

	// Expanding.
	EnableExpanding      *bool
	GetIsRowExpanded     func(row *Row[T]) bool
	GetRowCanExpand      func(row *Row[T]) bool
	PaginateExpandedRows *bool
	OnExpandedChange     OnChangeFn[ExpandedState]

	// Pagination. RowCount and PageCount are for manual pagination; a
	// PageCount of -1 means unknown.
	RowCount           *int
	PageCount          *int
	OnPaginationChange OnChangeFn[PaginationState]

	// StageOverrides replaces the computation of a stage with a caller
	// function of the upstream row model.
	StageOverrides map[Stage]func(t *Table[T], upstream *RowModel[T]) *RowModel[T]

	// Extensions holds options contributed by extension features, keyed by
	// Key name.
	Extensions map[string]any
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// boolOr dereferences p, falling back to def when p is nil.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// firstBool returns the first non-nil value of ps, or def.
func firstBool(def bool, ps ...*bool) bool {
	for _, p := range ps {
		if p != nil {
			return *p
		}
	}
	return def
}
