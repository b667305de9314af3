package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltinFilterFn(FilterAuto))
	assert.True(t, IsBuiltinFilterFn(FilterCompare))
	assert.True(t, IsBuiltinFilterFn(FilterInNumberRange))
	assert.False(t, IsBuiltinFilterFn("fuzzy"))

	assert.True(t, IsBuiltinSortingFn(SortAuto))
	assert.True(t, IsBuiltinSortingFn(SortDatetime))
	assert.False(t, IsBuiltinSortingFn("random"))

	assert.True(t, IsBuiltinAggregationFn(AggregateAuto))
	assert.True(t, IsBuiltinAggregationFn(AggregateMedian))
	assert.False(t, IsBuiltinAggregationFn("mode"))
}
