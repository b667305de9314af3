package compiler

import (
	"github.com/roach88/tablecore/internal/canon"
	"github.com/roach88/tablecore/internal/table"
)

// TableSpec is a compiled table definition.
type TableSpec struct {
	Name         string       `json:"name"`
	Columns      []ColumnSpec `json:"columns"`
	Features     []string     `json:"features,omitempty"`
	Options      OptionsSpec  `json:"options"`
	InitialState table.State  `json:"initialState"`
}

// ColumnSpec declares one column. Function names refer to the built-in
// filter, sorting and aggregation tables.
type ColumnSpec struct {
	ID          string `json:"id,omitempty"`
	AccessorKey string `json:"accessorKey,omitempty"`
	Header      string `json:"header,omitempty"`

	FilterFn      string `json:"filterFn,omitempty"`
	SortingFn     string `json:"sortingFn,omitempty"`
	AggregationFn string `json:"aggregationFn,omitempty"`

	SortUndefined string `json:"sortUndefined,omitempty"`
	SortDescFirst *bool  `json:"sortDescFirst,omitempty"`
	InvertSorting bool   `json:"invertSorting,omitempty"`

	EnableColumnFilter *bool `json:"enableColumnFilter,omitempty"`
	EnableGlobalFilter *bool `json:"enableGlobalFilter,omitempty"`
	EnableSorting      *bool `json:"enableSorting,omitempty"`
	EnableMultiSort    *bool `json:"enableMultiSort,omitempty"`
	EnableGrouping     *bool `json:"enableGrouping,omitempty"`
}

// OptionsSpec holds the table options a definition may set.
type OptionsSpec struct {
	// RowIDKey names the record field used as row id. SubRowsKey names the
	// field holding nested records.
	RowIDKey   string `json:"rowIdKey,omitempty"`
	SubRowsKey string `json:"subRowsKey,omitempty"`

	GlobalFilterFn        string `json:"globalFilterFn,omitempty"`
	FacetingReference     string `json:"facetingReference,omitempty"`
	FilterFromLeafRows    bool   `json:"filterFromLeafRows,omitempty"`
	MaxLeafRowFilterDepth *int   `json:"maxLeafRowFilterDepth,omitempty"`

	EnableSortingRemoval *bool `json:"enableSortingRemoval,omitempty"`
	EnableMultiRemove    *bool `json:"enableMultiRemove,omitempty"`
	EnableMultiSort      *bool `json:"enableMultiSort,omitempty"`
	SortDescFirst        *bool `json:"sortDescFirst,omitempty"`
	MaxMultiSortColCount int   `json:"maxMultiSortColCount,omitempty"`

	PaginateExpandedRows *bool `json:"paginateExpandedRows,omitempty"`
	AutoResetPageIndex   *bool `json:"autoResetPageIndex,omitempty"`
	AutoResetExpanded    *bool `json:"autoResetExpanded,omitempty"`

	RenderFallbackValue any  `json:"renderFallbackValue,omitempty"`
	Debug               bool `json:"debug,omitempty"`
}

// Hash returns the fingerprint of the spec's canonical JSON.
func (s *TableSpec) Hash() (string, error) {
	return canon.Fingerprint(canon.DomainTableSpec, s)
}

// ColumnID returns the id the table will give the column.
func (c ColumnSpec) ColumnID() string {
	def := table.ColumnDef[map[string]any]{ID: c.ID, AccessorKey: c.AccessorKey, Header: c.Header}
	return table.ColumnIDOf(def)
}
