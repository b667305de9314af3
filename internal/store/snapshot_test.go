package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tablecore/internal/canon"
	"github.com/roach88/tablecore/internal/table"
	"github.com/roach88/tablecore/internal/testutil"
)

var epoch = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixedStore(t *testing.T) *Store {
	t.Helper()
	ids := testutil.NewSequenceIDs("snap")
	return createTestStore(t,
		WithIDGenerator(func() (string, error) { return ids.Next(), nil }),
		WithClock(testutil.StepClock(epoch, time.Second)),
	)
}

func sortedState(col string, desc bool) table.State {
	return table.State{
		Sorting:    table.SortingState{{ID: col, Desc: desc}},
		Pagination: table.PaginationState{PageIndex: 0, PageSize: 10},
	}
}

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()

	state := table.State{
		ColumnFilters: table.ColumnFiltersState{{ID: "status", Value: "single"}},
		GlobalFilter:  "doe",
		Sorting:       table.SortingState{{ID: "age", Desc: true}},
		Grouping:      table.GroupingState{"status"},
		Expanded:      table.ExpandedState{Rows: map[string]bool{"status:single": true}},
		Pagination:    table.PaginationState{PageIndex: 2, PageSize: 25},
		Extensions:    map[string]any{"density": "sm"},
	}

	snap, inserted, err := s.SaveSnapshot(ctx, "people", state)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "snap-0001", snap.ID)
	assert.Equal(t, int64(1), snap.Seq)
	assert.Equal(t, epoch, snap.CreatedAt)
	assert.Equal(t, canon.MustFingerprint(canon.DomainState, state), snap.Fingerprint)

	got, err := s.ReadSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, "people", got.TableName)
	assert.Equal(t, snap.Fingerprint, got.Fingerprint)
	assert.True(t, got.CreatedAt.Equal(epoch))
	assert.Equal(t, state.ColumnFilters, got.State.ColumnFilters)
	assert.Equal(t, state.GlobalFilter, got.State.GlobalFilter)
	assert.Equal(t, state.Sorting, got.State.Sorting)
	assert.Equal(t, state.Grouping, got.State.Grouping)
	assert.Equal(t, state.Expanded, got.State.Expanded)
	assert.Equal(t, state.Pagination, got.State.Pagination)
	assert.Equal(t, "sm", got.State.Extensions["density"])

	// The restored state fingerprints the same as the saved one.
	assert.Equal(t, snap.Fingerprint, canon.MustFingerprint(canon.DomainState, got.State))
}

func TestSaveSnapshot_Idempotent(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()

	first, inserted, err := s.SaveSnapshot(ctx, "people", table.State{
		ColumnFilters: table.ColumnFiltersState{{ID: "age", Value: []any{1, 2}}},
	})
	require.NoError(t, err)
	require.True(t, inserted)

	// Structurally equal: integers and integral floats encode the same.
	second, inserted, err := s.SaveSnapshot(ctx, "people", table.State{
		ColumnFilters: table.ColumnFiltersState{{ID: "age", Value: []any{1.0, 2.0}}},
	})
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Seq, second.Seq)

	snaps, err := s.ListSnapshots(ctx, "people")
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestSaveSnapshot_SameStateOtherTable(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()
	state := sortedState("age", false)

	a, _, err := s.SaveSnapshot(ctx, "people", state)
	require.NoError(t, err)
	b, inserted, err := s.SaveSnapshot(ctx, "orders", state)
	require.NoError(t, err)

	assert.True(t, inserted)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.Equal(t, int64(1), b.Seq, "seq is per table")
}

func TestSaveSnapshot_EmptyTableName(t *testing.T) {
	s := fixedStore(t)
	_, _, err := s.SaveSnapshot(context.Background(), "", table.State{})
	assert.Error(t, err)
}

func TestSaveSnapshot_IDGeneratorError(t *testing.T) {
	boom := errors.New("entropy exhausted")
	s := createTestStore(t, WithIDGenerator(func() (string, error) { return "", boom }))

	_, _, err := s.SaveSnapshot(context.Background(), "people", table.State{})
	assert.ErrorIs(t, err, boom)

	snaps, err := s.ListSnapshots(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, snaps, "failed save rolls back")
}

func TestSaveSnapshot_DefaultUUIDv7(t *testing.T) {
	s := createTestStore(t)
	snap, _, err := s.SaveSnapshot(context.Background(), "people", table.State{})
	require.NoError(t, err)

	id, err := uuid.Parse(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestLatestAndList(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()

	for _, col := range []string{"age", "visits", "progress"} {
		_, _, err := s.SaveSnapshot(ctx, "people", sortedState(col, false))
		require.NoError(t, err)
	}
	_, _, err := s.SaveSnapshot(ctx, "orders", sortedState("total", true))
	require.NoError(t, err)

	latest, err := s.LatestSnapshot(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.Seq)
	assert.Equal(t, "progress", latest.State.Sorting[0].ID)

	people, err := s.ListSnapshots(ctx, "people")
	require.NoError(t, err)
	require.Len(t, people, 3)
	for i, snap := range people {
		assert.Equal(t, int64(i+1), snap.Seq)
	}

	all, err := s.ListSnapshots(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "orders", all[0].TableName)
	assert.True(t, all[0].State.Sorting[0].Desc)
}

func TestNotFound(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()

	_, err := s.ReadSnapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestSnapshot(ctx, "people")
	assert.ErrorIs(t, err, ErrNotFound)

	snaps, err := s.ListSnapshots(ctx, "people")
	require.NoError(t, err)
	assert.NotNil(t, snaps)
	assert.Empty(t, snaps)
}

func TestDeleteSnapshot(t *testing.T) {
	s := fixedStore(t)
	ctx := context.Background()

	snap, _, err := s.SaveSnapshot(ctx, "people", sortedState("age", false))
	require.NoError(t, err)
	require.NoError(t, s.DeleteSnapshot(ctx, snap.ID))
	require.NoError(t, s.DeleteSnapshot(ctx, snap.ID))

	_, err = s.ReadSnapshot(ctx, snap.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshots_SurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	snap, _, err := s1.SaveSnapshot(ctx, "people", sortedState("age", true))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.LatestSnapshot(ctx, "people")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, snap.State.Sorting, got.State.Sorting)
}
