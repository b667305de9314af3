// Package density is a table feature that adds a row density setting: its
// own state slice, two options, table capabilities to change it and a row
// capability that reports the cell padding for the current density.
//
// Register it after the stock features:
//
//	tbl, err := table.New(table.Options[Person]{
//		Columns:  cols,
//		Data:     people,
//		Features: []*table.Feature[Person]{density.Feature[Person]()},
//	})
//	density.Toggle(tbl)
package density

import "github.com/roach88/tablecore/internal/table"

// Density is the row density setting.
type Density string

const (
	Small  Density = "sm"
	Medium Density = "md"
	Large  Density = "lg"
)

// Name is the feature name.
const Name = "Density"

// Keys of the slice and options the feature owns.
var (
	StateKey    = table.NewKey[Density]("density")
	OnChangeKey = table.NewKey[table.OnChangeFn[Density]]("onDensityChange")
	EnableKey   = table.NewKey[bool]("enableDensity")
)

// Capability names.
const (
	CapSetDensity    = "setDensity"
	CapToggleDensity = "toggleDensity"
	CapCellPadding   = "cellPadding"
)

// Feature returns the density feature.
func Feature[T any]() *table.Feature[T] {
	return &table.Feature[T]{
		Name:    Name,
		Slices:  []string{StateKey.Name()},
		Options: []string{OnChangeKey.Name(), EnableKey.Name()},

		InitialState: func(s table.State) table.State {
			if _, ok := StateKey.In(s.Extensions); ok {
				return s
			}
			return s.WithExtension(StateKey.Name(), Medium)
		},

		DefaultOptions: func(t *table.Table[T], o *table.Options[T]) {
			ext := make(map[string]any, len(o.Extensions)+2)
			for k, v := range o.Extensions {
				ext[k] = v
			}
			if _, ok := OnChangeKey.In(ext); !ok {
				ext[OnChangeKey.Name()] = table.MakeStateUpdater(t, StateKey)
			}
			if _, ok := EnableKey.In(ext); !ok {
				ext[EnableKey.Name()] = true
			}
			o.Extensions = ext
		},

		ConstructTable: func(t *table.Table[T]) {
			t.Provide(CapSetDensity, func(u table.Updater[Density]) { Set(t, u) })
			t.Provide(CapToggleDensity, func() { Toggle(t) })
		},

		ConstructRow: func(t *table.Table[T], r *table.Row[T]) {
			r.Provide(CapCellPadding, func() int { return Padding(Get(t)) })
		},
	}
}

// Get returns the table's current density.
func Get[T any](t *table.Table[T]) Density {
	d, ok := table.StateValue(t, StateKey)
	if !ok {
		return Medium
	}
	return d
}

// Set hands a density update to the onDensityChange option. It does nothing
// when enableDensity is false.
func Set[T any](t *table.Table[T], u table.Updater[Density]) {
	if enabled, ok := table.OptionValue(t, EnableKey); ok && !enabled {
		t.Logger().Debug("density change ignored: density disabled")
		return
	}
	onChange, ok := table.OptionValue(t, OnChangeKey)
	if !ok {
		return
	}
	onChange(u)
}

// Toggle cycles the density lg -> md -> sm -> lg.
func Toggle[T any](t *table.Table[T]) {
	Set(t, table.Modify(Next))
}

// Next returns the density Toggle moves to from d.
func Next(d Density) Density {
	switch d {
	case Large:
		return Medium
	case Medium:
		return Small
	}
	return Large
}

// Padding returns the cell padding in pixels for a density.
func Padding(d Density) int {
	switch d {
	case Small:
		return 4
	case Large:
		return 16
	}
	return 8
}
