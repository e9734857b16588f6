package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/pkgforge/internal/plan"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func result(started time.Time) *plan.Result {
	return &plan.Result{
		RunID:       "run-1",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		Installed:   4,
		Updated:     1,
		BuildTime:   42 * time.Second,
		InstallTime: 9 * time.Second,
	}
}

func TestRecordAndList(t *testing.T) {
	s := openTest(t)

	rec, err := s.RecordRun(result(time.Now()), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "ok", rec.Status)

	got, err := s.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, 4, got[0].Installed)
	assert.Equal(t, 42*time.Second, got[0].BuildTime)
}

func TestRecordFailedRun(t *testing.T) {
	s := openTest(t)

	_, err := s.RecordRun(result(time.Now()), fmt.Errorf("build failed for package curl"))
	require.NoError(t, err)

	got, err := s.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "failed", got[0].Status)
	assert.Contains(t, got[0].Error, "curl")
}

func TestListRecentOrderAndLimit(t *testing.T) {
	s := openTest(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		res := result(base.Add(time.Duration(i) * time.Minute))
		res.RunID = fmt.Sprintf("run-%d", i)
		_, err := s.RecordRun(res, nil)
		require.NoError(t, err)
	}

	got, err := s.ListRecent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "run-4", got[0].RunID, "newest first")
	assert.Equal(t, "run-2", got[2].RunID)
}
