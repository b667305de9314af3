package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// DefaultPageIndex and DefaultPageSize seed the pagination slice.
const (
	DefaultPageIndex = 0
	DefaultPageSize  = 10
)

// ColumnFilter is one active per-column filter.
type ColumnFilter struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// ColumnFiltersState is the ordered list of active column filters.
type ColumnFiltersState []ColumnFilter

// ColumnSort is one sort descriptor.
type ColumnSort struct {
	ID   string `json:"id"`
	Desc bool   `json:"desc"`
}

// SortingState is the ordered list of sort descriptors; earlier entries take
// precedence and later entries break ties.
type SortingState []ColumnSort

// GroupingState is the ordered list of grouped column ids.
type GroupingState []string

// ExpandedState is either "all rows expanded" or an explicit row id set.
// It encodes to JSON as `true` or as an object of row id to boolean.
type ExpandedState struct {
	All  bool
	Rows map[string]bool
}

// ExpandAll returns the ExpandedState meaning every row is expanded.
func ExpandAll() ExpandedState {
	return ExpandedState{All: true}
}

// ExpandRows returns an ExpandedState with the given row ids expanded.
func ExpandRows(ids ...string) ExpandedState {
	rows := make(map[string]bool, len(ids))
	for _, id := range ids {
		rows[id] = true
	}
	return ExpandedState{Rows: rows}
}

// IsEmpty reports whether no row is expanded.
func (e ExpandedState) IsEmpty() bool {
	if e.All {
		return false
	}
	for _, v := range e.Rows {
		if v {
			return false
		}
	}
	return true
}

// Has reports whether the row id is expanded.
func (e ExpandedState) Has(id string) bool {
	return e.All || e.Rows[id]
}

// MarshalJSON implements json.Marshaler.
func (e ExpandedState) MarshalJSON() ([]byte, error) {
	if e.All {
		return []byte("true"), nil
	}
	if e.Rows == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e.Rows)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ExpandedState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*e = ExpandedState{All: true}
		return nil
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*e = ExpandedState{}
		return nil
	}
	var rows map[string]bool
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("expanded state: %w", err)
	}
	*e = ExpandedState{Rows: rows}
	return nil
}

// PaginationState selects one page of the display sequence.
type PaginationState struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
}

// State is the flat aggregate of every feature's state slice. Built-in
// slices are fields; slices contributed by extension features live in
// Extensions under their Key name.
//
// State values are snapshots: updaters return new slices instead of
// mutating the ones they receive.
type State struct {
	ColumnFilters ColumnFiltersState
	GlobalFilter  any
	Sorting       SortingState
	Grouping      GroupingState
	Expanded      ExpandedState
	Pagination    PaginationState
	Extensions    map[string]any
}

// builtinStateKeys are the JSON names of the built-in slices.
var builtinStateKeys = []string{"columnFilters", "globalFilter", "sorting", "grouping", "expanded", "pagination"}

// Clone returns a copy of s that shares no slices or maps with it.
// Filter values and extension values are copied shallowly.
func (s State) Clone() State {
	out := s
	out.ColumnFilters = slices.Clone(s.ColumnFilters)
	out.Sorting = slices.Clone(s.Sorting)
	out.Grouping = slices.Clone(s.Grouping)
	out.Expanded = ExpandedState{All: s.Expanded.All, Rows: maps.Clone(s.Expanded.Rows)}
	out.Extensions = maps.Clone(s.Extensions)
	return out
}

// MarshalJSON encodes the state as one flat object: built-in slices under
// their camelCase names and extension slices under their own names.
func (s State) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(builtinStateKeys)+len(s.Extensions))
	for k, v := range s.Extensions {
		flat[k] = v
	}
	cf := s.ColumnFilters
	if cf == nil {
		cf = ColumnFiltersState{}
	}
	sorting := s.Sorting
	if sorting == nil {
		sorting = SortingState{}
	}
	grouping := s.Grouping
	if grouping == nil {
		grouping = GroupingState{}
	}
	flat["columnFilters"] = cf
	flat["globalFilter"] = s.GlobalFilter
	flat["sorting"] = sorting
	flat["grouping"] = grouping
	flat["expanded"] = s.Expanded
	flat["pagination"] = s.Pagination
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat encoding produced by MarshalJSON. Unknown
// keys are kept as extension slices.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("table state: %w", err)
	}

	var out State
	decode := func(key string, target any) error {
		msg, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(msg, target); err != nil {
			return fmt.Errorf("table state %s: %w", key, err)
		}
		return nil
	}
	if err := decode("columnFilters", &out.ColumnFilters); err != nil {
		return err
	}
	if err := decode("globalFilter", &out.GlobalFilter); err != nil {
		return err
	}
	if err := decode("sorting", &out.Sorting); err != nil {
		return err
	}
	if err := decode("grouping", &out.Grouping); err != nil {
		return err
	}
	if err := decode("expanded", &out.Expanded); err != nil {
		return err
	}
	if err := decode("pagination", &out.Pagination); err != nil {
		return err
	}

	if len(raw) > 0 {
		out.Extensions = make(map[string]any, len(raw))
		for k, msg := range raw {
			var v any
			if err := json.Unmarshal(msg, &v); err != nil {
				return fmt.Errorf("table state %s: %w", k, err)
			}
			out.Extensions[k] = v
		}
	}

	*s = out
	return nil
}

// WithExtension returns a copy of s with the extension slice name set to v.
// The receiver's Extensions map is not modified.
func (s State) WithExtension(name string, v any) State {
	ext := make(map[string]any, len(s.Extensions)+1)
	maps.Copy(ext, s.Extensions)
	ext[name] = v
	s.Extensions = ext
	return s
}
