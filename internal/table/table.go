package table

import (
	"fmt"
	"log/slog"
)

// Table owns the options, state, columns and memoized row-model pipeline for
// one data set.
//
// A Table is not safe for concurrent use. Every getter runs synchronously to
// completion; callers sharing a table across goroutines must serialize
// access.
type Table[T any] struct {
	Capabilities

	options      Options[T]
	initialState State
	state        State
	logger       *slog.Logger

	features   []*Feature[T]
	featureSet map[string]bool
	rowHooks   []*Feature[T]

	columns     []*Column[T]
	columnsByID map[string]*Column[T]
	headers     []*Header[T]

	optionsVersion int
	columnsVersion int

	queue     *resetQueue
	autoReset autoResetState

	coreMemo           memo[*RowModel[T]]
	columnFilteredMemo memo[*RowModel[T]]
	globalFilteredMemo memo[*RowModel[T]]
	groupedMemo        memo[*RowModel[T]]
	sortedMemo         memo[*RowModel[T]]
	expandedMemo       memo[*RowModel[T]]
	paginatedMemo      memo[*RowModel[T]]
	profileMemo        memo[map[string]columnProfile]
	facets             map[string]*facetCache[T]
}

// New builds a table. It fails when no columns are defined, when column ids
// are missing or duplicated, or when two features claim the same name.
func New[T any](opts Options[T]) (*Table[T], error) {
	if len(opts.Columns) == 0 {
		return nil, ErrNoColumns
	}

	base := opts.BaseFeatures
	if base == nil {
		base = StockFeatures[T]()
	}
	features, err := composeFeatures(base, opts.Features)
	if err != nil {
		return nil, fmt.Errorf("compose features: %w", err)
	}

	t := &Table[T]{
		features:   features,
		featureSet: make(map[string]bool, len(features)),
		queue:      newResetQueue(),
		facets:     make(map[string]*facetCache[T]),
	}
	for _, f := range features {
		t.featureSet[f.Name] = true
		if f.ConstructRow != nil {
			t.rowHooks = append(t.rowHooks, f)
		}
	}

	initial := opts.InitialState.Clone()
	for _, f := range features {
		if f.InitialState != nil {
			initial = f.InitialState(initial)
		}
	}
	t.initialState = initial
	t.state = initial.Clone()

	t.options = t.applyDefaults(opts)
	t.logger = t.options.Logger

	for _, f := range features {
		if f.ConstructTable == nil {
			continue
		}
		t.beginHook("table", f.Name)
		f.ConstructTable(t)
		if c := t.endHook(); c != nil {
			return nil, c
		}
	}

	if err := t.buildColumns(); err != nil {
		return nil, err
	}
	if err := t.probeRows(); err != nil {
		return nil, err
	}

	t.logger.Debug("table created",
		"columns", len(t.columns),
		"features", len(t.features),
		"rows", len(t.options.Data),
	)
	return t, nil
}

// applyDefaults fills unset options from the core and feature defaults.
func (t *Table[T]) applyDefaults(o Options[T]) Options[T] {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.OnStateChange == nil {
		if o.State == nil {
			o.OnStateChange = t.ApplyState
		} else {
			logger := o.Logger
			o.OnStateChange = func(Updater[State]) {
				logger.Warn("state update dropped: controlled state without OnStateChange")
			}
		}
	}
	for _, f := range t.features {
		if f.DefaultOptions != nil {
			f.DefaultOptions(t, &o)
		}
	}
	return o
}

// buildColumns resolves the column definitions and runs the column and
// header hooks.
func (t *Table[T]) buildColumns() error {
	columns := make([]*Column[T], 0, len(t.options.Columns))
	byID := make(map[string]*Column[T], len(t.options.Columns))
	headers := make([]*Header[T], 0, len(t.options.Columns))

	for i, def := range t.options.Columns {
		col, err := newColumn(t, def, i)
		if err != nil {
			return err
		}
		if _, dup := byID[col.ID]; dup {
			return fmt.Errorf("column %q: %w", col.ID, ErrDuplicateColumnID)
		}
		for _, f := range t.features {
			if f.ConstructColumn == nil {
				continue
			}
			col.beginHook("column", f.Name)
			f.ConstructColumn(t, col)
			if c := col.endHook(); c != nil {
				return c
			}
		}
		columns = append(columns, col)
		byID[col.ID] = col

		h := &Header[T]{ID: col.ID, Index: i, ColSpan: 1, Column: col, table: t}
		for _, f := range t.features {
			if f.ConstructHeader == nil {
				continue
			}
			h.beginHook("header", f.Name)
			f.ConstructHeader(t, h)
			if c := h.endHook(); c != nil {
				return c
			}
		}
		headers = append(headers, h)
	}

	t.columns = columns
	t.columnsByID = byID
	t.headers = headers
	t.columnsVersion++
	return nil
}

// probeRows runs the row hooks once on an empty row so capability
// collisions between features surface at construction.
func (t *Table[T]) probeRows() error {
	if len(t.rowHooks) == 0 {
		return nil
	}
	probe := &Row[T]{table: t, cache: newRowCache()}
	for _, f := range t.rowHooks {
		probe.beginHook("row", f.Name)
		f.ConstructRow(t, probe)
		if c := probe.endHook(); c != nil {
			return c
		}
	}
	return nil
}

// Options returns the table's resolved options.
func (t *Table[T]) Options() Options[T] {
	return t.options
}

// Logger returns the table's logger.
func (t *Table[T]) Logger() *slog.Logger {
	return t.logger
}

// HasFeature reports whether a feature with the given name is registered.
func (t *Table[T]) HasFeature(name string) bool {
	return t.featureSet[name]
}

// Features returns the registered features in registration order.
func (t *Table[T]) Features() []*Feature[T] {
	return t.features
}

// GetState returns the current state: the caller's state when controlled,
// the table's own otherwise.
func (t *Table[T]) GetState() State {
	if t.options.State != nil {
		return *t.options.State
	}
	return t.state
}

// InitialState returns the state captured at construction.
func (t *Table[T]) InitialState() State {
	return t.initialState.Clone()
}

// SetState hands an update of the whole state to Options.OnStateChange.
func (t *Table[T]) SetState(u Updater[State]) {
	t.options.OnStateChange(u)
}

// ApplyState applies an update to the table-owned state. It is the default
// OnStateChange for tables without controlled state.
func (t *Table[T]) ApplyState(u Updater[State]) {
	t.state = FunctionalUpdate(u, t.state)
}

// Reset restores the state captured at construction.
func (t *Table[T]) Reset() {
	t.SetState(Replace(t.initialState.Clone()))
}

// SetOptions replaces the options. MergeOptions, when set, combines the
// previous and next options. The feature list is fixed at construction;
// changing it requires a new table.
func (t *Table[T]) SetOptions(u Updater[Options[T]]) error {
	prev := t.options
	next := FunctionalUpdate(u, prev)
	if prev.MergeOptions != nil {
		next = prev.MergeOptions(prev, next)
	}
	next.Features = prev.Features
	next.BaseFeatures = prev.BaseFeatures
	if next.OnStateChange == nil || (prev.State == nil) != (next.State == nil) {
		next.OnStateChange = nil
	}

	t.options = t.applyDefaults(next)
	t.logger = t.options.Logger
	t.optionsVersion++

	if identityOf(prev.Columns) != identityOf(next.Columns) {
		if err := t.buildColumns(); err != nil {
			t.options = prev
			t.logger = prev.Logger
			return fmt.Errorf("set options: %w", err)
		}
	}
	return nil
}
