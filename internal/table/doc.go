// Package table implements a headless data-table engine: a memoized
// pipeline of row-model stages over caller data, driven by a serializable
// state object and extended by composable features.
//
// # Pipeline
//
// Rows flow through the stages in a fixed order:
//
//	core -> column filtered -> globally filtered -> grouped -> sorted -> expanded -> paginated
//
// Each stage is memoized on its input model and the state slices it reads,
// so repeated getter calls with unchanged inputs return the same *RowModel.
// A stage whose feature is not registered, or whose Manual* option is set,
// passes its input through unchanged.
//
// # State
//
// State holds one slice per feature (sorting, columnFilters, pagination and
// so on). Tables own their state by default; setting Options.State makes the
// caller the owner, and every change is then routed through
// Options.OnStateChange or the per-slice On*Change callbacks.
//
// # Features
//
// A Feature contributes state slices, option defaults and named
// capabilities on tables, columns, rows and headers. The stock features are
// returned by StockFeatures. Name collisions between features fail New with
// a *CollisionError.
package table
