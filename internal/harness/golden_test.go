package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_FilterSortPage(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "filter_sort_page"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestSnapshot_MarshalEmpty(t *testing.T) {
	data, err := Snapshot{Scenario: "empty"}.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `{"page":[],"scenario":"empty","trace":[]}`, string(data))
}

func TestSnapshot_MarshalGroupRow(t *testing.T) {
	data, err := Snapshot{
		Scenario: "group",
		Page: []PageRow{{
			ID:               "dept:ops",
			Values:           map[string]any{"dept": "ops"},
			GroupingColumnID: "dept",
			GroupingValue:    "ops",
			LeafCount:        1,
		}},
	}.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"page":[{"depth":0,"groupingColumnId":"dept","groupingValue":"ops","id":"dept:ops","leafCount":1,"values":{"dept":"ops"}}],"scenario":"group","trace":[]}`,
		string(data))
}
