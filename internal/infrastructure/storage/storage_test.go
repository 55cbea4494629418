package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStorage(t)

	run := &RunRecord{
		ID:                  uuid.NewString(),
		Kind:                RunKindProcess,
		StartedAt:           time.Now().UTC().Truncate(time.Second),
		FinishedAt:          time.Now().UTC().Truncate(time.Second),
		SelectedShops:       []string{"ShopA", "ShopB"},
		IncludeClosedOrders: true,
		Success:             true,
		Message:             "processed 42 records",
		TotalRecords:        42,
	}
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, RunKindProcess, got.Kind)
	assert.Equal(t, []string{"ShopA", "ShopB"}, got.SelectedShops)
	assert.True(t, got.IncludeClosedOrders)
	assert.False(t, got.IncludeOfflineOrders)
	assert.Equal(t, 42, got.TotalRecords)
	assert.Equal(t, "processed 42 records", got.Message)
}

func TestGetRun_Unknown(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.GetRun(uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStorage(t)

	base := time.Now().UTC().Truncate(time.Second)
	ids := make([]string, 3)
	for i := 0; i < 3; i++ {
		ids[i] = uuid.NewString()
		require.NoError(t, s.SaveRun(&RunRecord{
			ID:         ids[i],
			Kind:       RunKindProcess,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:    true,
		}))
	}

	runs, err := s.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestListRuns_Limit(t *testing.T) {
	s := newTestStorage(t)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveRun(&RunRecord{
			ID:         uuid.NewString(),
			Kind:       RunKindExport,
			StartedAt:  base.Add(time.Duration(i) * time.Second),
			FinishedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestExportRunKeepsFilename(t *testing.T) {
	s := newTestStorage(t)

	run := &RunRecord{
		ID:             uuid.NewString(),
		Kind:           RunKindExport,
		StartedAt:      time.Now().UTC(),
		FinishedAt:     time.Now().UTC(),
		Success:        true,
		ExportFilename: "processed_data_20260825.xlsx",
	}
	require.NoError(t, s.SaveRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "processed_data_20260825.xlsx", got.ExportFilename)
}
