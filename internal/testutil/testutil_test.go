package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakePersons_Deterministic(t *testing.T) {
	a := MakePersons(50)
	b := MakePersons(50)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, MakePersonsSeeded(DefaultSeed+1, 50))
}

func TestMakePersons_Nested(t *testing.T) {
	people := MakePersons(4, 2, 1)
	require.Len(t, people, 4)
	for i, p := range people {
		require.Len(t, p.SubRows, 2)
		assert.Len(t, p.SubRows[0].SubRows, 1)
		assert.Empty(t, p.SubRows[0].SubRows[0].SubRows)
		assert.Equal(t, p.ID+".1", p.SubRows[1].ID, "person %d", i)
	}
}

func TestMakePersons_Ranges(t *testing.T) {
	people := MakePersons(1000)
	does := 0
	for _, p := range people {
		assert.GreaterOrEqual(t, p.Age, 0)
		assert.Less(t, p.Age, 60)
		assert.LessOrEqual(t, p.Progress, 100)
		assert.Contains(t, Statuses, p.Status)
		if p.LastName == "Doe" {
			does++
		}
	}
	assert.Positive(t, does, "fixture must contain Doe rows")
}

func TestMakePersons_Empty(t *testing.T) {
	assert.Nil(t, MakePersons())
	assert.Empty(t, MakePersons(0))
}

func TestPersonMaps(t *testing.T) {
	maps := PersonMaps(MakePersons(2, 1))
	require.Len(t, maps, 2)
	assert.Equal(t, "0", maps[0]["id"])
	subs, ok := maps[0]["subRows"].([]any)
	require.True(t, ok)
	require.Len(t, subs, 1)
	assert.Equal(t, "0.0", subs[0].(map[string]any)["id"])
}

func TestSequenceIDs(t *testing.T) {
	g := NewSequenceIDs("snap")
	assert.Equal(t, "snap-0001", g.Next())
	assert.Equal(t, "snap-0002", g.Next())
	g.Reset()
	assert.Equal(t, "snap-0001", g.Next())
	assert.Equal(t, "test-0001", NewSequenceIDs("").Next())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	g := NewSequenceIDs("x")
	var wg sync.WaitGroup
	seen := sync.Map{}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				_, dup := seen.LoadOrStore(g.Next(), true)
				assert.False(t, dup)
			}
		}()
	}
	wg.Wait()
}

func TestStepClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := StepClock(start, time.Second)
	assert.Equal(t, start, clock())
	assert.Equal(t, start.Add(time.Second), clock())
}
