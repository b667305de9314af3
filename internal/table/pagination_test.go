package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/testutil"
)

func TestPagination_Defaults(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(25), nil)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 10}, tbl.GetState().Pagination)
	assert.Equal(t, 3, tbl.GetPageCount())
	assert.Equal(t, 25, tbl.GetRowCount())
	assert.Equal(t, []int{0, 1, 2}, tbl.GetPageOptions())

	page := tbl.GetRowModel()
	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}, rowIDs(page.Rows))
	requireConsistent(t, page)
}

func TestPagination_Navigation(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(25), nil)
	assert.False(t, tbl.GetCanPreviousPage())
	assert.True(t, tbl.GetCanNextPage())

	tbl.NextPage()
	tbl.NextPage()
	assert.Equal(t, 2, tbl.GetState().Pagination.PageIndex)
	assert.False(t, tbl.GetCanNextPage())
	assert.Equal(t, []string{"20", "21", "22", "23", "24"}, rowIDs(tbl.GetRowModel().Rows))

	tbl.NextPage()
	assert.Equal(t, 2, tbl.GetState().Pagination.PageIndex, "index is clamped to the last page")

	tbl.PreviousPage()
	assert.Equal(t, 1, tbl.GetState().Pagination.PageIndex)
	tbl.FirstPage()
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
	tbl.LastPage()
	assert.Equal(t, 2, tbl.GetState().Pagination.PageIndex)

	tbl.SetPageIndex(Replace(-4))
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
}

func TestPagination_StageClampsOutOfRangeIndex(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(25), nil)
	tbl.SetPagination(Replace(PaginationState{PageIndex: 9, PageSize: 10}))

	assert.Equal(t, []string{"20", "21", "22", "23", "24"}, rowIDs(tbl.GetRowModel().Rows))
	assert.Equal(t, 9, tbl.GetState().Pagination.PageIndex, "the stage does not write state")
}

func TestPagination_ZeroPageSize(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(25), nil)
	tbl.SetPagination(Replace(PaginationState{PageIndex: 0, PageSize: 0}))

	page := tbl.GetRowModel()
	assert.Empty(t, page.Rows)
	assert.Empty(t, page.FlatRows)
	assert.Equal(t, 0, tbl.GetPageCount())
	assert.Empty(t, tbl.GetPageOptions())
	assert.False(t, tbl.GetCanNextPage())
}

func TestPagination_EmptyData(t *testing.T) {
	tbl := newPersonTable(t, nil, nil)
	assert.Empty(t, tbl.GetRowModel().Rows)
	assert.Equal(t, 0, tbl.GetPageCount())
	tbl.LastPage()
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
}

func TestPagination_SetPageSizeKeepsTopRow(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), nil)
	tbl.SetPageIndex(Replace(2))
	tbl.SetPageSize(Replace(5))
	assert.Equal(t, PaginationState{PageIndex: 4, PageSize: 5}, tbl.GetState().Pagination)
	assert.Equal(t, "20", tbl.GetRowModel().Rows[0].ID)

	tbl.SetPageSize(Replace(0))
	assert.Equal(t, 1, tbl.GetState().Pagination.PageSize, "page size is at least 1")
}

func TestPagination_Reset(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), func(o *Options[person]) {
		o.InitialState.Pagination = PaginationState{PageIndex: 1, PageSize: 20}
	})
	tbl.SetPagination(Replace(PaginationState{PageIndex: 0, PageSize: 5}))

	tbl.ResetPageSize(false)
	assert.Equal(t, 20, tbl.GetState().Pagination.PageSize)
	tbl.ResetPagination(false)
	assert.Equal(t, PaginationState{PageIndex: 1, PageSize: 20}, tbl.GetState().Pagination)
	tbl.ResetPagination(true)
	assert.Equal(t, PaginationState{PageIndex: 0, PageSize: 10}, tbl.GetState().Pagination)
}

func TestPagination_Manual(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.ManualPagination = true
		o.RowCount = Int(95)
	})
	assert.Len(t, tbl.GetRowModel().Rows, 10, "manual pagination passes rows through")
	assert.Equal(t, 95, tbl.GetRowCount())
	assert.Equal(t, 10, tbl.GetPageCount())

	tbl.SetPageIndex(Replace(7))
	assert.Equal(t, 7, tbl.GetState().Pagination.PageIndex)
}

func TestPagination_UnknownPageCount(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(10), func(o *Options[person]) {
		o.ManualPagination = true
		o.PageCount = Int(-1)
	})
	tbl.SetPageIndex(Replace(40))
	assert.Equal(t, 40, tbl.GetState().Pagination.PageIndex)
	assert.True(t, tbl.GetCanNextPage())
}

func TestAutoReset_FirstTriggerRegisters(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), nil)
	tbl.SetPagination(Replace(PaginationState{PageIndex: 3, PageSize: 10}))

	// The first read computes every stage; that only registers the reset.
	tbl.GetRowModel()
	assert.Equal(t, 3, tbl.GetState().Pagination.PageIndex)
	assert.Zero(t, tbl.queue.Len())
}

func TestAutoReset_PageIndexAfterSortChange(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), nil)
	tbl.GetRowModel()

	tbl.SetPageIndex(Replace(3))
	assert.Equal(t, "30", tbl.GetRowModel().Rows[0].ID, "pagination changes alone do not reset")

	tbl.SetSorting(Replace(SortingState{{ID: "age"}}))
	page := tbl.GetRowModel()
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
	sorted := tbl.GetSortedRowModel()
	require.NotEmpty(t, page.Rows)
	assert.Same(t, sorted.Rows[0], page.Rows[0], "the returned page reflects the reset")
}

func TestAutoReset_PageIndexAfterFilterChange(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), nil)
	tbl.GetRowModel()
	tbl.SetPageIndex(Replace(2))
	tbl.SetGlobalFilter(Replace[any]("a"))
	tbl.GetRowModel()
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
}

func TestAutoReset_PageSetAfterReadSurvives(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), nil)
	tbl.GetRowModel()

	tbl.SetSorting(Replace(SortingState{{ID: "age", Desc: true}}))
	tbl.GetRowModel()
	require.Zero(t, tbl.queue.Len())

	tbl.SetPageIndex(Replace(1))
	page := tbl.GetRowModel()
	assert.Equal(t, 1, tbl.GetState().Pagination.PageIndex)

	sorted := tbl.GetPrePaginationRowModel().Rows
	require.Len(t, sorted, 50)
	assert.Same(t, sorted[10], page.Rows[0])
}

func TestAutoReset_Disabled(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options[person])
	}{
		{"auto reset page index off", func(o *Options[person]) { o.AutoResetPageIndex = Bool(false) }},
		{"auto reset all off", func(o *Options[person]) { o.AutoResetAll = Bool(false) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := newPersonTable(t, testutil.MakePersons(50), tt.mutate)
			tbl.GetRowModel()
			tbl.SetPageIndex(Replace(3))
			tbl.SetSorting(Replace(SortingState{{ID: "age"}}))
			tbl.GetRowModel()
			assert.Equal(t, 3, tbl.GetState().Pagination.PageIndex)
		})
	}
}

func TestAutoReset_AllOverridesManual(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(50), func(o *Options[person]) {
		o.ManualPagination = true
		o.AutoResetAll = Bool(true)
	})
	tbl.GetRowModel()
	tbl.SetPageIndex(Replace(3))
	tbl.SetSorting(Replace(SortingState{{ID: "age"}}))
	tbl.GetRowModel()
	assert.Equal(t, 0, tbl.GetState().Pagination.PageIndex)
}

func TestAutoReset_ExpandedAfterGroupingChange(t *testing.T) {
	tbl := newPersonTable(t, testutil.MakePersons(20), nil)
	tbl.GetRowModel()
	tbl.SetExpanded(Replace(ExpandRows("0")))
	tbl.GetRowModel()
	assert.True(t, tbl.GetState().Expanded.Has("0"))

	tbl.SetGrouping(Replace(GroupingState{"status"}))
	tbl.GetRowModel()
	assert.True(t, tbl.GetState().Expanded.IsEmpty())
}

func TestResetQueue_CoalescesAndOrders(t *testing.T) {
	q := newResetQueue()
	var ran []string
	assert.True(t, q.push("a", func() { ran = append(ran, "a1") }))
	assert.True(t, q.push("b", func() { ran = append(ran, "b") }))
	assert.False(t, q.push("a", func() { ran = append(ran, "a2") }))
	assert.Equal(t, 2, q.Len())

	assert.True(t, q.flush())
	assert.Equal(t, []string{"a1", "b"}, ran)
	assert.False(t, q.flush())
}

func TestResetQueue_PushDuringFlush(t *testing.T) {
	q := newResetQueue()
	var ran []string
	q.push("a", func() {
		ran = append(ran, "a")
		q.push("a", func() { ran = append(ran, "a again") })
		assert.False(t, q.flush(), "re-entrant flush is a no-op")
	})
	q.flush()
	assert.Equal(t, []string{"a", "a again"}, ran)
	assert.Zero(t, q.Len())
}
