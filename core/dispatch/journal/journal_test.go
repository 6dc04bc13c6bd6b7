package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftdispatch/core/model"
)

func sampleRecords(base time.Time) []Record {
	prev := model.CarID(0)
	return []Record{
		{Timestamp: base, Kind: KindAssignment, Car: 0, Floor: 4, Direction: model.Up, PassID: "p1", Score: 30},
		{Timestamp: base.Add(time.Second), Kind: KindClaim, Car: 1, Floor: 6, Direction: model.Down, Previous: &prev, Detail: "passing"},
		{Timestamp: base.Add(2 * time.Second), Kind: KindCancellation, Car: 0, Floor: 6},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		require.NoError(t, s.Append(ctx, r))
	}

	all, err := s.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, model.Up, all[0].Direction)
	require.NotNil(t, all[1].Previous)
	assert.Equal(t, model.CarID(0), *all[1].Previous)

	car := model.CarID(0)
	mine, err := s.Query(ctx, Query{Car: &car})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	claims, err := s.Query(ctx, Query{Kind: KindClaim})
	require.NoError(t, err)
	assert.Len(t, claims, 1)

	late, err := s.Query(ctx, Query{Start: base.Add(1500 * time.Millisecond)})
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, KindCancellation, late[0].Kind)
}

func TestJSONLStore(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRotatingJSONLStore(t *testing.T) {
	s, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "logs", "journal.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestAppendCanceledContext(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Append(ctx, Record{Kind: KindPark}))
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}
