package table

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/testutil"
)

type person = testutil.Person

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func personColumns() []ColumnDef[person] {
	return []ColumnDef[person]{
		{AccessorKey: "firstName"},
		{AccessorKey: "lastName"},
		{AccessorKey: "age"},
		{AccessorKey: "visits"},
		{AccessorKey: "status"},
		{AccessorKey: "progress"},
	}
}

// newPersonTable builds a table over people with sub rows enabled.
// mutate adjusts the options before construction.
func newPersonTable(t *testing.T, people []person, mutate func(*Options[person])) *Table[person] {
	t.Helper()
	opts := Options[person]{
		Data:       people,
		Columns:    personColumns(),
		GetSubRows: func(p person, _ int) []person { return p.SubRows },
		Logger:     quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	tbl, err := New(opts)
	require.NoError(t, err)
	return tbl
}

// node is a small tree record for traversal tests.
type node struct {
	Name  string
	Score any
	Group string
	Kids  []node
}

func nodeColumns() []ColumnDef[node] {
	return []ColumnDef[node]{
		{ID: "name", AccessorFn: func(n node, _ int) any { return n.Name }},
		{ID: "score", AccessorFn: func(n node, _ int) any { return n.Score }},
		{ID: "group", AccessorFn: func(n node, _ int) any { return n.Group }},
	}
}

func newNodeTable(t *testing.T, data []node, mutate func(*Options[node])) *Table[node] {
	t.Helper()
	opts := Options[node]{
		Data:       data,
		Columns:    nodeColumns(),
		GetSubRows: func(n node, _ int) []node { return n.Kids },
		Logger:     quietLogger(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	tbl, err := New(opts)
	require.NoError(t, err)
	return tbl
}

func rowIDs[T any](rows []*Row[T]) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

// requireConsistent checks the FlatRows / RowsByID contract of a model
// whose Rows is the top level of the tree.
func requireConsistent[T any](t *testing.T, m *RowModel[T]) {
	t.Helper()
	flat := flattenRows(m.Rows)
	require.Len(t, m.FlatRows, len(flat))
	for i := range flat {
		require.Same(t, flat[i], m.FlatRows[i])
	}
	require.Len(t, m.RowsByID, len(m.FlatRows))
	for _, r := range m.FlatRows {
		require.Same(t, r, m.RowsByID[r.ID])
	}
}
