package harness

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/table"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join(scenarioDir, name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"filter_sort_page", "group_expand", "global_search"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_TraceAndState(t *testing.T) {
	result, err := Run(loadScenario(t, "filter_sort_page"))
	require.NoError(t, err)

	require.Len(t, result.Trace, 4)
	assert.Equal(t, TraceEvent{
		Step:      2,
		Op:        OpPageSize,
		RowCount:  4,
		PageIndex: 0,
		PageCount: 2,
		RowIDs:    []string{"p3", "p4"},
	}, result.Trace[2])

	require.Len(t, result.Page, 2)
	assert.Equal(t, "p2", result.Page[0].ID)
	assert.Equal(t, "Turing", result.Page[0].Values["lastName"])
	assert.Equal(t, 41.0, result.Page[0].Values["age"])

	assert.Equal(t, table.PaginationState{PageIndex: 1, PageSize: 2}, result.State.Pagination)
	assert.Equal(t, table.SortingState{{ID: "age", Desc: true}}, result.State.Sorting)
	require.Len(t, result.State.ColumnFilters, 1)
	assert.Equal(t, "age", result.State.ColumnFilters[0].ID)
}

func TestRun_GroupRows(t *testing.T) {
	result, err := Run(loadScenario(t, "group_expand"))
	require.NoError(t, err)
	require.Len(t, result.Page, 8)

	group := result.Page[0]
	assert.Equal(t, "dept:eng", group.ID)
	assert.Equal(t, 0, group.Depth)
	assert.Equal(t, "dept", group.GroupingColumnID)
	assert.Equal(t, "eng", group.GroupingValue)
	assert.Equal(t, 2, group.LeafCount)

	leaf := result.Page[1]
	assert.Equal(t, "p1", leaf.ID)
	assert.Equal(t, 1, leaf.Depth)
	assert.Empty(t, leaf.GroupingColumnID)
	assert.Zero(t, leaf.LeafCount)

	assert.True(t, result.State.Expanded.All)
	assert.Equal(t, table.GroupingState{"dept"}, result.State.Grouping)
}

func TestRun_FailedExpectationReported(t *testing.T) {
	s := loadScenario(t, "filter_sort_page")
	wrong := 3
	s.Steps[0].Expect.RowCount = &wrong
	s.Steps[3].Expect.RowIDs = []string{"p1", "p2"}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "step 0 (filter): expected rowCount 3, got 4", result.Errors[0])
	assert.Equal(t, "step 3 (page): expected rowIds [p1 p2], got [p2 p1]", result.Errors[1])
}

func TestRun_FailedAssertionReported(t *testing.T) {
	s := loadScenario(t, "filter_sort_page")
	s.Assertions = []Assertion{{Type: AssertRowIDs, Rows: []string{"p3"}}}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: row_ids")
	assert.Contains(t, result.Errors[0], "[3] page rows=4 page=1/2 [p2 p1]")
}

func TestRun_StepError(t *testing.T) {
	s := loadScenario(t, "filter_sort_page")
	s.Steps[0].Filter = "salary > 10"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0 (filter)")
}

func TestRun_UnknownTable(t *testing.T) {
	s := loadScenario(t, "group_expand")
	s.Table = "animals"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "animals" not found`)
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := Run(loadScenario(t, "global_search"), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "step applied")
	assert.Contains(t, buf.String(), "scenario=global_search")
	assert.Contains(t, buf.String(), "op=reset")
}

func TestCheckStep(t *testing.T) {
	ev := TraceEvent{RowCount: 5, PageCount: 1, RowIDs: []string{"a"}}
	assert.Nil(t, checkStep(ev, nil))
	assert.Empty(t, checkStep(ev, &StepExpect{}))

	pages := 2
	errs := checkStep(ev, &StepExpect{PageCount: &pages, RowIDs: []string{}})
	assert.Equal(t, []string{
		"expected pageCount 2, got 1",
		"expected rowIds [], got [a]",
	}, errs)
}
