package compiler

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/roach88/tablecore/internal/features/density"
	"github.com/roach88/tablecore/internal/records"
	"github.com/roach88/tablecore/internal/table"
)

type featureFactory func() *table.Feature[records.Record]

// stockCatalog lists the stock features in registration order.
var stockCatalog = []struct {
	name string
	make featureFactory
}{
	{table.FeatureColumnFaceting, table.ColumnFacetingFeature[records.Record]},
	{table.FeatureColumnFiltering, table.ColumnFilteringFeature[records.Record]},
	{table.FeatureGlobalFaceting, table.GlobalFacetingFeature[records.Record]},
	{table.FeatureGlobalFiltering, table.GlobalFilteringFeature[records.Record]},
	{table.FeatureRowSorting, table.RowSortingFeature[records.Record]},
	{table.FeatureColumnGrouping, table.ColumnGroupingFeature[records.Record]},
	{table.FeatureRowExpanding, table.RowExpandingFeature[records.Record]},
	{table.FeatureRowPagination, table.RowPaginationFeature[records.Record]},
}

// extensionCatalog lists the features registered after the stock ones.
var extensionCatalog = map[string]featureFactory{
	density.Name: density.Feature[records.Record],
}

// KnownFeature reports whether a definition may list name.
func KnownFeature(name string) bool {
	if _, ok := extensionCatalog[name]; ok {
		return true
	}
	for _, f := range stockCatalog {
		if f.name == name {
			return true
		}
	}
	return false
}

// FeatureNames returns every feature a definition may list, stock features
// first.
func FeatureNames() []string {
	names := make([]string, 0, len(stockCatalog)+len(extensionCatalog))
	for _, f := range stockCatalog {
		names = append(names, f.name)
	}
	ext := make([]string, 0, len(extensionCatalog))
	for name := range extensionCatalog {
		ext = append(ext, name)
	}
	sort.Strings(ext)
	return append(names, ext...)
}

// features splits the spec's feature list into base and extension
// features. An empty list selects every stock feature and no extensions;
// a list naming only extensions keeps every stock feature.
func (s *TableSpec) features() (base, extra []*table.Feature[records.Record], err error) {
	listed := make(map[string]bool, len(s.Features))
	for _, name := range s.Features {
		if !KnownFeature(name) {
			return nil, nil, fmt.Errorf("unknown feature %q", name)
		}
		listed[name] = true
	}

	anyStock := false
	for _, f := range stockCatalog {
		if listed[f.name] {
			anyStock = true
			base = append(base, f.make())
		}
	}
	if !anyStock {
		base = nil
	}
	for _, name := range s.Features {
		if mk, ok := extensionCatalog[name]; ok {
			extra = append(extra, mk())
		}
	}
	return base, extra, nil
}

// ColumnDefs converts the spec's columns to table column definitions.
func (s *TableSpec) ColumnDefs() []table.ColumnDef[records.Record] {
	defs := make([]table.ColumnDef[records.Record], len(s.Columns))
	for i, c := range s.Columns {
		def := table.ColumnDef[records.Record]{
			ID:                 c.ID,
			AccessorKey:        c.AccessorKey,
			FilterFn:           c.FilterFn,
			SortingFn:          c.SortingFn,
			AggregationFn:      c.AggregationFn,
			SortUndefined:      table.SortUndefined(c.SortUndefined),
			SortDescFirst:      c.SortDescFirst,
			InvertSorting:      c.InvertSorting,
			EnableColumnFilter: c.EnableColumnFilter,
			EnableGlobalFilter: c.EnableGlobalFilter,
			EnableSorting:      c.EnableSorting,
			EnableMultiSort:    c.EnableMultiSort,
			EnableGrouping:     c.EnableGrouping,
		}
		if c.Header != "" {
			def.Header = c.Header
		}
		defs[i] = def
	}
	return defs
}

// TableOptions builds table options for the spec over data.
func (s *TableSpec) TableOptions(data []records.Record, logger *slog.Logger) (table.Options[records.Record], error) {
	base, extra, err := s.features()
	if err != nil {
		return table.Options[records.Record]{}, err
	}

	o := s.Options
	opts := table.Options[records.Record]{
		Data:         data,
		Columns:      s.ColumnDefs(),
		BaseFeatures: base,
		Features:     extra,
		InitialState: s.InitialState.Clone(),
		Logger:       logger,
		Debug:        o.Debug,

		RenderFallbackValue:   o.RenderFallbackValue,
		GlobalFilterFn:        o.GlobalFilterFn,
		FacetingReference:     table.FacetingReference(o.FacetingReference),
		FilterFromLeafRows:    o.FilterFromLeafRows,
		MaxLeafRowFilterDepth: o.MaxLeafRowFilterDepth,
		EnableSortingRemoval:  o.EnableSortingRemoval,
		EnableMultiRemove:     o.EnableMultiRemove,
		EnableMultiSort:       o.EnableMultiSort,
		SortDescFirst:         o.SortDescFirst,
		MaxMultiSortColCount:  o.MaxMultiSortColCount,
		PaginateExpandedRows:  o.PaginateExpandedRows,
		AutoResetPageIndex:    o.AutoResetPageIndex,
		AutoResetExpanded:     o.AutoResetExpanded,
	}
	if o.SubRowsKey != "" {
		opts.GetSubRows = records.SubRows(o.SubRowsKey)
	}
	if o.RowIDKey != "" {
		opts.GetRowID = rowIDFromKey(o.RowIDKey)
	}
	return opts, nil
}

// Build validates the spec and constructs a table over data.
func (s *TableSpec) Build(data []records.Record, logger *slog.Logger) (*table.Table[records.Record], error) {
	if errs := Validate(s); len(errs) > 0 {
		return nil, fmt.Errorf("table %s: %w", s.Name, errs[0])
	}
	opts, err := s.TableOptions(data, logger)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", s.Name, err)
	}
	tbl, err := table.New(opts)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", s.Name, err)
	}
	return tbl, nil
}

// rowIDFromKey reads the row id from a record field, falling back to the
// positional id when the field is missing.
func rowIDFromKey(key string) func(records.Record, int, *table.Row[records.Record]) string {
	return func(r records.Record, index int, parent *table.Row[records.Record]) string {
		if v, ok := r[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		if parent != nil {
			return parent.ID + "." + strconv.Itoa(index)
		}
		return strconv.Itoa(index)
	}
}
