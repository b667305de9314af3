package table

import (
	"errors"
	"fmt"
)

// Construction errors returned by New. Pipeline getters never return errors;
// out-of-range state is clamped or ignored instead.
var (
	// ErrNoColumns is returned when a table is built without column definitions.
	ErrNoColumns = errors.New("table has no columns")

	// ErrDuplicateColumnID is returned when two column definitions resolve to the same id.
	ErrDuplicateColumnID = errors.New("duplicate column id")

	// ErrColumnID is returned when a column definition has neither an id nor an accessor key.
	ErrColumnID = errors.New("column definition needs an id or accessor key")

	// ErrFeatureCollision is returned when two features claim the same name.
	ErrFeatureCollision = errors.New("feature collision")
)

// CollisionKind identifies what two features both tried to own.
type CollisionKind string

const (
	// CollisionFeature means two features were registered under the same name.
	CollisionFeature CollisionKind = "feature"

	// CollisionStateSlice means two features declared the same state slice.
	CollisionStateSlice CollisionKind = "state_slice"

	// CollisionOption means two features declared the same extension option.
	CollisionOption CollisionKind = "option"

	// CollisionCapability means two features provided the same capability name
	// on the same object type.
	CollisionCapability CollisionKind = "capability"
)

// CollisionError describes a construction-time name collision between two
// features. It matches ErrFeatureCollision with errors.Is.
type CollisionError struct {
	Kind   CollisionKind
	Name   string
	Target string // "table", "column", "row" or "header" for capabilities
	First  string // feature that registered the name first
	Second string // feature that tried to register it again
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %q on %s: registered by %q and %q", e.Kind, e.Name, e.Target, e.First, e.Second)
	}
	return fmt.Sprintf("%s %q: registered by %q and %q", e.Kind, e.Name, e.First, e.Second)
}

// Is reports whether target is ErrFeatureCollision.
func (e *CollisionError) Is(target error) bool {
	return target == ErrFeatureCollision
}

// IsCollision returns true if err is (or wraps) a feature collision.
func IsCollision(err error) bool {
	var ce *CollisionError
	return errors.As(err, &ce)
}
