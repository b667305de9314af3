package table

// Updater is either a replacement value or a function of the previous value.
// The zero Updater replaces with the zero value of S.
type Updater[S any] struct {
	value S
	fn    func(S) S
}

// Replace returns an Updater that ignores the previous value.
func Replace[S any](value S) Updater[S] {
	return Updater[S]{value: value}
}

// Modify returns an Updater that derives the next value from the previous one.
// fn must not mutate its argument in place; state slices are shared snapshots.
func Modify[S any](fn func(previous S) S) Updater[S] {
	return Updater[S]{fn: fn}
}

// IsFunc reports whether the updater is function-valued.
func (u Updater[S]) IsFunc() bool {
	return u.fn != nil
}

// FunctionalUpdate applies u to previous: a function-valued updater is
// invoked with previous, a plain value is returned as is.
//
//	FunctionalUpdate(Replace(5), 10)                           // 5
//	FunctionalUpdate(Modify(func(o int) int { return o + 1 }), 10) // 11
func FunctionalUpdate[S any](u Updater[S], previous S) S {
	if u.fn != nil {
		return u.fn(previous)
	}
	return u.value
}

// OnChangeFn receives state updates for one slice. The owner of the state is
// expected to apply the updater and feed the result back on the next read.
type OnChangeFn[S any] func(Updater[S])
