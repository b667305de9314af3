package table

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/roach88/tablecore/internal/canon"
)

// memo caches one computed value against the dependency list it was computed
// from. Dependencies must be comparable: row model pointers, fingerprints,
// ints and small structs.
type memo[R any] struct {
	deps  []any
	value R
	ok    bool
}

// get returns the cached value when deps equal the previous call's deps and
// recomputes otherwise. The second result reports a recomputation.
func (m *memo[R]) get(deps []any, compute func() R) (R, bool) {
	if m.ok && slices.Equal(m.deps, deps) {
		return m.value, false
	}
	m.value = compute()
	m.deps = deps
	m.ok = true
	return m.value, true
}

// fingerprint returns a structural key for a state slice. Values that cannot
// be encoded as JSON fall back to their Go syntax representation.
func fingerprint(v any) string {
	fp, err := canon.Fingerprint(canon.DomainSliceState, v)
	if err != nil {
		return fmt.Sprintf("%T:%#v", v, v)
	}
	return fp
}

// dataIdentity is the memo key of the caller's record slice: its backing
// array and length.
type dataIdentity struct {
	ptr unsafe.Pointer
	len int
}

func identityOf[T any](data []T) dataIdentity {
	return dataIdentity{ptr: unsafe.Pointer(unsafe.SliceData(data)), len: len(data)}
}
