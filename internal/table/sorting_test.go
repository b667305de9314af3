package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/testutil"
)

func sparseScores() []node {
	return []node{
		{Name: "a", Score: 3},
		{Name: "b"},
		{Name: "c", Score: 1},
		{Name: "d"},
		{Name: "e", Score: 2},
	}
}

func TestSorting_UndefinedPlacement(t *testing.T) {
	tests := []struct {
		name      string
		undefined SortUndefined
		desc      bool
		want      []string
	}{
		{"default last asc", "", false, []string{"2", "4", "0", "1", "3"}},
		{"last desc", SortUndefinedLast, true, []string{"0", "4", "2", "1", "3"}},
		{"first asc", SortUndefinedFirst, false, []string{"1", "3", "2", "4", "0"}},
		{"first desc", SortUndefinedFirst, true, []string{"1", "3", "0", "4", "2"}},
		{"none asc", SortUndefinedNone, false, []string{"1", "3", "2", "4", "0"}},
		{"none desc", SortUndefinedNone, true, []string{"0", "4", "2", "1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newNodeTable(t, sparseScores(), func(o *Options[node]) {
				o.Columns[1].SortUndefined = tt.undefined
			})
			tbl.SetSorting(Replace(SortingState{{ID: "score", Desc: tt.desc}}))
			assert.Equal(t, tt.want, rowIDs(tbl.GetSortedRowModel().Rows))
		})
	}
}

func groupedScores() []node {
	return []node{
		{Name: "a", Group: "x", Score: 2},
		{Name: "b", Group: "y", Score: 1},
		{Name: "c", Group: "x", Score: 1},
		{Name: "d", Group: "y", Score: 2},
		{Name: "e", Group: "x", Score: 2},
	}
}

func TestSorting_Stable(t *testing.T) {
	tbl := newNodeTable(t, groupedScores(), nil)
	tbl.SetSorting(Replace(SortingState{{ID: "group"}}))
	assert.Equal(t, []string{"0", "2", "4", "1", "3"}, rowIDs(tbl.GetSortedRowModel().Rows))
}

func TestSorting_MultiKey(t *testing.T) {
	tbl := newNodeTable(t, groupedScores(), nil)
	tbl.SetSorting(Replace(SortingState{{ID: "group"}, {ID: "score", Desc: true}}))
	m := tbl.GetSortedRowModel()
	assert.Equal(t, []string{"0", "4", "2", "3", "1"}, rowIDs(m.Rows))
	requireConsistent(t, m)
}

func TestSorting_Invert(t *testing.T) {
	tbl := newNodeTable(t, groupedScores(), func(o *Options[node]) {
		o.Columns[0].InvertSorting = true
	})
	tbl.SetSorting(Replace(SortingState{{ID: "name"}}))
	assert.Equal(t, []string{"4", "3", "2", "1", "0"}, rowIDs(tbl.GetSortedRowModel().Rows))
}

func TestSorting_SubRowsPerLevel(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(3, 4), nil)
	tbl.SetSorting(Replace(SortingState{{ID: "age"}}))
	m := tbl.GetSortedRowModel()
	requireConsistent(t, m)

	require.Len(t, m.Rows, 3)
	checkAsc := func(rows []*Row[person]) {
		for i := 1; i < len(rows); i++ {
			assert.LessOrEqual(t, rows[i-1].Original.Age, rows[i].Original.Age)
		}
	}
	checkAsc(m.Rows)
	for _, r := range m.Rows {
		require.Len(t, r.SubRows, 4)
		checkAsc(r.SubRows)
		for _, sub := range r.SubRows {
			assert.Equal(t, r.ID, sub.ParentID)
		}
	}
}

func TestSorting_CustomFn(t *testing.T) {
	tbl := newNodeTable(t, groupedScores(), func(o *Options[node]) {
		o.Columns[0].SortingFn = "byLength"
		o.SortingFns = map[string]SortingFn[node]{
			"byLength": func(a, b *Row[node], id string) int {
				return len(a.GetValue(id).(string)) - len(b.GetValue(id).(string))
			},
		}
	})
	col, _ := tbl.GetColumn("name")
	assert.NotNil(t, col.GetSortingFn())
	tbl.SetSorting(Replace(SortingState{{ID: "name"}}))
	assert.Len(t, tbl.GetSortedRowModel().Rows, 5)
}

func TestSorting_DisabledColumnIgnored(t *testing.T) {
	tbl := newNodeTable(t, groupedScores(), func(o *Options[node]) {
		o.Columns[0].EnableSorting = Bool(false)
	})
	col, _ := tbl.GetColumn("name")
	assert.False(t, col.GetCanSort())
	tbl.SetSorting(Replace(SortingState{{ID: "name", Desc: true}}))
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, rowIDs(tbl.GetSortedRowModel().Rows))
}

func TestToggleSorting_TextCycle(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), nil)
	last, _ := tbl.GetColumn("lastName")

	assert.Equal(t, SortAsc, last.GetFirstSortDir())
	last.ToggleSorting(nil, false)
	assert.Equal(t, SortAsc, last.GetIsSorted())
	last.ToggleSorting(nil, false)
	assert.Equal(t, SortDesc, last.GetIsSorted())
	assert.Equal(t, SortNone, last.GetNextSortingOrder(false))
	last.ToggleSorting(nil, false)
	assert.Equal(t, SortNone, last.GetIsSorted())
	assert.Empty(t, tbl.GetState().Sorting)
}

func TestToggleSorting_NumberStartsDesc(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), nil)
	age, _ := tbl.GetColumn("age")
	assert.Equal(t, SortDesc, age.GetAutoSortDir())

	age.ToggleSorting(nil, false)
	assert.Equal(t, SortDesc, age.GetIsSorted())
	age.ToggleSorting(nil, false)
	assert.Equal(t, SortAsc, age.GetIsSorted())
	age.ToggleSorting(nil, false)
	assert.Equal(t, SortNone, age.GetIsSorted())
}

func TestToggleSorting_RemovalDisabled(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.EnableSortingRemoval = Bool(false)
	})
	last, _ := tbl.GetColumn("lastName")
	for _, want := range []SortDirection{SortAsc, SortDesc, SortAsc, SortDesc} {
		last.ToggleSorting(nil, false)
		assert.Equal(t, want, last.GetIsSorted())
	}
}

func TestToggleSorting_DescFirstOption(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.SortDescFirst = Bool(true)
	})
	last, _ := tbl.GetColumn("lastName")
	last.ToggleSorting(nil, false)
	assert.Equal(t, SortDesc, last.GetIsSorted())
}

func TestToggleSorting_MultiAndReplace(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.MaxMultiSortColCount = 2
	})
	last, _ := tbl.GetColumn("lastName")
	age, _ := tbl.GetColumn("age")
	first, _ := tbl.GetColumn("firstName")

	last.ToggleSorting(nil, false)
	age.ToggleSorting(nil, true)
	assert.Equal(t, SortingState{{ID: "lastName"}, {ID: "age", Desc: true}}, tbl.GetState().Sorting)
	assert.Equal(t, 1, age.GetSortIndex())

	first.ToggleSorting(nil, true)
	assert.Equal(t, SortingState{{ID: "age", Desc: true}, {ID: "firstName"}}, tbl.GetState().Sorting)

	last.ToggleSorting(nil, false)
	assert.Equal(t, SortingState{{ID: "lastName"}}, tbl.GetState().Sorting)

	last.ToggleSorting(Bool(true), false)
	assert.Equal(t, SortingState{{ID: "lastName", Desc: true}}, tbl.GetState().Sorting)

	last.ClearSorting()
	assert.Empty(t, tbl.GetState().Sorting)
	assert.Equal(t, -1, last.GetSortIndex())
}

func TestResetSorting(t *testing.T) {
	initial := SortingState{{ID: "age"}}
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.InitialState.Sorting = initial
	})
	tbl.SetSorting(Replace(SortingState{{ID: "lastName", Desc: true}}))
	tbl.ResetSorting(false)
	assert.Equal(t, initial, tbl.GetState().Sorting)
	tbl.ResetSorting(true)
	assert.Equal(t, SortingState{}, tbl.GetState().Sorting)
}

func TestCompareAlphanumeric(t *testing.T) {
	assert.Negative(t, compareAlphanumeric("item2", "item10"))
	assert.Positive(t, compareAlphanumeric("b1", "a2"))
	assert.Zero(t, compareAlphanumeric("x7", "x7"))
	assert.Negative(t, compareAlphanumeric("a", "1"), "text runs sort before digit runs")
	assert.Equal(t, []string{"abc", "12", "d", "3"}, splitAlphanumeric("abc12d3"))
}
