package table

import (
	"fmt"
	"slices"
)

// Names of the stock features.
const (
	FeatureColumnFaceting  = "ColumnFaceting"
	FeatureColumnFiltering = "ColumnFiltering"
	FeatureGlobalFaceting  = "GlobalFaceting"
	FeatureGlobalFiltering = "GlobalFiltering"
	FeatureRowSorting      = "RowSorting"
	FeatureColumnGrouping  = "ColumnGrouping"
	FeatureRowExpanding    = "RowExpanding"
	FeatureRowPagination   = "RowPagination"
)

// Feature is an independently authored unit that contributes state slices,
// default options and capabilities to a table. Every field except Name is
// optional.
//
// Hooks run once per object in feature registration order; a feature that
// uses a capability of another feature must be registered after it.
type Feature[T any] struct {
	Name string

	// Slices and Options declare the state slice and option names the
	// feature owns. Two features owning the same name fail construction
	// unless the later one lists the name in Wraps.
	Slices  []string
	Options []string
	Wraps   []string

	// InitialState receives the state assembled so far and returns it with
	// the feature's defaults filled in. Values already present win.
	InitialState func(state State) State

	// DefaultOptions fills unset options. It runs at construction and again
	// on every SetOptions.
	DefaultOptions func(t *Table[T], opts *Options[T])

	ConstructTable  func(t *Table[T])
	ConstructColumn func(t *Table[T], column *Column[T])
	ConstructRow    func(t *Table[T], row *Row[T])
	ConstructHeader func(t *Table[T], header *Header[T])
}

// StockFeatures returns the built-in features in registration order.
func StockFeatures[T any]() []*Feature[T] {
	return []*Feature[T]{
		ColumnFacetingFeature[T](),
		ColumnFilteringFeature[T](),
		GlobalFacetingFeature[T](),
		GlobalFilteringFeature[T](),
		RowSortingFeature[T](),
		ColumnGroupingFeature[T](),
		RowExpandingFeature[T](),
		RowPaginationFeature[T](),
	}
}

// composeFeatures validates the feature list and returns it in registration
// order. Names, slices and options must be unique across features.
func composeFeatures[T any](base, extra []*Feature[T]) ([]*Feature[T], error) {
	all := make([]*Feature[T], 0, len(base)+len(extra))
	all = append(all, base...)
	all = append(all, extra...)

	names := make(map[string]string, len(all))
	sliceOwners := make(map[string]string)
	optionOwners := make(map[string]string)

	claim := func(owners map[string]string, kind CollisionKind, name string, f *Feature[T]) error {
		if first, ok := owners[name]; ok && !slices.Contains(f.Wraps, name) {
			return &CollisionError{Kind: kind, Name: name, First: first, Second: f.Name}
		}
		owners[name] = f.Name
		return nil
	}

	for i, f := range all {
		if f == nil {
			return nil, fmt.Errorf("feature %d is nil", i)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if first, ok := names[f.Name]; ok {
			return nil, &CollisionError{Kind: CollisionFeature, Name: f.Name, First: first, Second: f.Name}
		}
		names[f.Name] = f.Name

		for _, s := range f.Slices {
			if err := claim(sliceOwners, CollisionStateSlice, s, f); err != nil {
				return nil, err
			}
		}
		for _, o := range f.Options {
			if err := claim(optionOwners, CollisionOption, o, f); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

// MakeStateUpdater returns an OnChangeFn that applies updates to the
// extension slice named by key through the table's SetState.
func MakeStateUpdater[T, V any](t *Table[T], key Key[V]) OnChangeFn[V] {
	return func(u Updater[V]) {
		t.SetState(Modify(func(s State) State {
			prev, _ := key.In(s.Extensions)
			return s.WithExtension(key.Name(), FunctionalUpdate(u, prev))
		}))
	}
}

// ColumnFacetingFeature computes per-column unique values and ranges.
func ColumnFacetingFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name: FeatureColumnFaceting,
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.FacetingReference == "" {
				o.FacetingReference = FacetPreFiltered
			}
		},
	}
}

// ColumnFilteringFeature owns the columnFilters slice and the column
// filtering stage.
func ColumnFilteringFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureColumnFiltering,
		Slices: []string{"columnFilters"},
		InitialState: func(s State) State {
			if s.ColumnFilters == nil {
				s.ColumnFilters = ColumnFiltersState{}
			}
			return s
		},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnColumnFiltersChange == nil {
				o.OnColumnFiltersChange = func(u Updater[ColumnFiltersState]) {
					t.SetState(Modify(func(s State) State {
						s.ColumnFilters = FunctionalUpdate(u, s.ColumnFilters)
						return s
					}))
				}
			}
			if o.MaxLeafRowFilterDepth == nil {
				o.MaxLeafRowFilterDepth = Int(DefaultMaxLeafRowFilterDepth)
			}
		},
	}
}

// GlobalFacetingFeature computes unique values and ranges across all
// globally filterable columns.
func GlobalFacetingFeature[T any]() *Feature[T] {
	return &Feature[T]{Name: FeatureGlobalFaceting}
}

// GlobalFilteringFeature owns the globalFilter slice and the global
// filtering stage.
func GlobalFilteringFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureGlobalFiltering,
		Slices: []string{"globalFilter"},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnGlobalFilterChange == nil {
				o.OnGlobalFilterChange = func(u Updater[any]) {
					t.SetState(Modify(func(s State) State {
						s.GlobalFilter = FunctionalUpdate(u, s.GlobalFilter)
						return s
					}))
				}
			}
			if o.GlobalFilterFn == "" {
				o.GlobalFilterFn = FilterAuto
			}
			if o.MaxLeafRowFilterDepth == nil {
				o.MaxLeafRowFilterDepth = Int(DefaultMaxLeafRowFilterDepth)
			}
		},
	}
}

// RowSortingFeature owns the sorting slice and the sorting stage.
func RowSortingFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureRowSorting,
		Slices: []string{"sorting"},
		InitialState: func(s State) State {
			if s.Sorting == nil {
				s.Sorting = SortingState{}
			}
			return s
		},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnSortingChange == nil {
				o.OnSortingChange = func(u Updater[SortingState]) {
					t.SetState(Modify(func(s State) State {
						s.Sorting = FunctionalUpdate(u, s.Sorting)
						return s
					}))
				}
			}
		},
	}
}

// ColumnGroupingFeature owns the grouping slice and the grouping stage.
func ColumnGroupingFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureColumnGrouping,
		Slices: []string{"grouping"},
		InitialState: func(s State) State {
			if s.Grouping == nil {
				s.Grouping = GroupingState{}
			}
			return s
		},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnGroupingChange == nil {
				o.OnGroupingChange = func(u Updater[GroupingState]) {
					t.SetState(Modify(func(s State) State {
						s.Grouping = FunctionalUpdate(u, s.Grouping)
						return s
					}))
				}
			}
		},
	}
}

// RowExpandingFeature owns the expanded slice and the expansion stage.
func RowExpandingFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureRowExpanding,
		Slices: []string{"expanded"},
		InitialState: func(s State) State {
			if !s.Expanded.All && s.Expanded.Rows == nil {
				s.Expanded.Rows = map[string]bool{}
			}
			return s
		},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnExpandedChange == nil {
				o.OnExpandedChange = func(u Updater[ExpandedState]) {
					t.SetState(Modify(func(s State) State {
						s.Expanded = FunctionalUpdate(u, s.Expanded)
						return s
					}))
				}
			}
			if o.PaginateExpandedRows == nil {
				o.PaginateExpandedRows = Bool(true)
			}
		},
	}
}

// RowPaginationFeature owns the pagination slice and the pagination stage.
func RowPaginationFeature[T any]() *Feature[T] {
	return &Feature[T]{
		Name:   FeatureRowPagination,
		Slices: []string{"pagination"},
		InitialState: func(s State) State {
			if s.Pagination == (PaginationState{}) {
				s.Pagination = PaginationState{PageIndex: DefaultPageIndex, PageSize: DefaultPageSize}
			}
			return s
		},
		DefaultOptions: func(t *Table[T], o *Options[T]) {
			if o.OnPaginationChange == nil {
				o.OnPaginationChange = func(u Updater[PaginationState]) {
					t.SetState(Modify(func(s State) State {
						s.Pagination = FunctionalUpdate(u, s.Pagination)
						return s
					}))
				}
			}
		},
	}
}
