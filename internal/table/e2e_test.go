package table

import (
	"cmp"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/testutil"
)

func TestPipeline_FilterSortPaginate(t *testing.T) {
	people := testutil.MakePersons(1000)
	tbl := newPersonTable(t, people, func(o *Options[person]) {
		o.Columns[2].FilterFn = FilterCompare
		o.GetRowID = func(p person, _ int, _ *Row[person]) string { return p.ID }
	})

	tbl.SetColumnFilters(Replace(ColumnFiltersState{{
		ID:    "age",
		Value: []Comparison{{Op: ">=", Operand: 20}, {Op: "<", Operand: 40}},
	}}))
	tbl.SetGlobalFilter(Replace[any]("doe"))
	tbl.SetSorting(Replace(SortingState{{ID: "lastName"}, {ID: "age", Desc: true}}))

	var want []person
	for _, p := range people {
		if p.Age >= 20 && p.Age < 40 && strings.Contains(strings.ToLower(p.LastName), "doe") {
			want = append(want, p)
		}
	}
	slices.SortStableFunc(want, func(a, b person) int {
		if c := cmp.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return cmp.Compare(b.Age, a.Age)
	})
	require.NotEmpty(t, want, "seeded data should contain matching rows")

	page := tbl.GetRowModel().Rows
	require.Len(t, page, min(10, len(want)))
	for i, r := range page {
		assert.Equal(t, want[i].ID, r.ID)
		age := r.GetValue("age").(int)
		assert.GreaterOrEqual(t, age, 20)
		assert.Less(t, age, 40)
		assert.Equal(t, "Doe", r.GetValue("lastName"))
	}
	for i := 1; i < len(page); i++ {
		assert.GreaterOrEqual(t, page[i-1].Original.Age, page[i].Original.Age)
	}

	assert.Equal(t, len(want), tbl.GetRowCount())
	assert.Len(t, tbl.GetFilteredRowModel().Rows, len(want))
	assert.Equal(t, (len(want)+9)/10, tbl.GetPageCount())
	requireConsistent(t, tbl.GetSortedRowModel())

	if len(want) > 10 {
		tbl.NextPage()
		next := tbl.GetRowModel().Rows
		assert.Equal(t, want[10].ID, next[0].ID)
	}
}
