package table

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Key names a feature-owned slot in State.Extensions or Options.Extensions
// and fixes the Go type stored there, so extension members can be read with
// static types instead of bare map lookups.
type Key[V any] struct {
	name string
}

// NewKey returns the key for the named slot.
func NewKey[V any](name string) Key[V] {
	return Key[V]{name: name}
}

// Name returns the slot name.
func (k Key[V]) Name() string {
	return k.name
}

// In looks the slot up in m. Values restored from JSON carry generic types
// (string, float64, map[string]any); they are converted to V when possible.
func (k Key[V]) In(m map[string]any) (V, bool) {
	var zero V
	raw, ok := m[k.name]
	if !ok || raw == nil {
		return zero, false
	}
	if v, ok := raw.(V); ok {
		return v, true
	}

	target := reflect.TypeOf((*V)(nil)).Elem()
	rv := reflect.ValueOf(raw)
	if target.Kind() != reflect.Interface && rv.Type().ConvertibleTo(target) && rv.Kind() == target.Kind() {
		return rv.Convert(target).Interface().(V), true
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return zero, false
	}
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, false
	}
	return v, true
}

// StateValue reads an extension slice from the table's current state.
func StateValue[T, V any](t *Table[T], key Key[V]) (V, bool) {
	return key.In(t.GetState().Extensions)
}

// OptionValue reads an extension option from the table's options.
func OptionValue[T, V any](t *Table[T], key Key[V]) (V, bool) {
	return key.In(t.options.Extensions)
}

// Capabilities is a registry of named members attached to a table, column,
// row or header by features. Callers look members up by name and assert the
// type with CapabilityOf.
type Capabilities struct {
	members map[string]any
	owners  map[string]string

	// owner is the feature whose construction hook is running.
	owner     string
	target    string
	collision *CollisionError
}

// Provide attaches a named member. A member provided under a name that a
// different feature already provided is recorded as a collision and the
// original member is kept.
func (c *Capabilities) Provide(name string, member any) {
	if c.members == nil {
		c.members = make(map[string]any)
		c.owners = make(map[string]string)
	}
	if first, ok := c.owners[name]; ok && first != c.owner {
		if c.collision == nil {
			c.collision = &CollisionError{
				Kind:   CollisionCapability,
				Name:   name,
				Target: c.target,
				First:  first,
				Second: c.owner,
			}
		}
		return
	}
	c.members[name] = member
	c.owners[name] = c.owner
}

// Capability returns the member registered under name.
func (c *Capabilities) Capability(name string) (any, bool) {
	m, ok := c.members[name]
	return m, ok
}

// CapabilityNames returns the registered member names in sorted order.
func (c *Capabilities) CapabilityNames() []string {
	names := make([]string, 0, len(c.members))
	for name := range c.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CapabilityOwner returns the feature that provided name.
func (c *Capabilities) CapabilityOwner(name string) (string, bool) {
	owner, ok := c.owners[name]
	return owner, ok
}

// capabilityHolder is implemented by Table, Column, Row and Header through
// their embedded Capabilities.
type capabilityHolder interface {
	Capability(name string) (any, bool)
}

// CapabilityOf returns the member registered under name as an F. It reports
// false when the member is missing or has a different type.
//
//	toggle, ok := table.CapabilityOf[func()](tbl, "toggleDensity")
func CapabilityOf[F any](h capabilityHolder, name string) (F, bool) {
	var zero F
	m, ok := h.Capability(name)
	if !ok {
		return zero, false
	}
	f, ok := m.(F)
	if !ok {
		return zero, false
	}
	return f, true
}

// beginHook marks the start of a feature construction hook.
func (c *Capabilities) beginHook(target, owner string) {
	c.target = target
	c.owner = owner
}

// endHook clears the running owner and returns the first collision seen.
func (c *Capabilities) endHook() *CollisionError {
	c.owner = ""
	return c.collision
}
