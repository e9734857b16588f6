// Package history persists a record of completed runs. One row per
// execution, written after the scheduler returns; in-flight state is
// never persisted.
package history

import (
	"database/sql"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/joss/pkgforge/internal/config"
	"github.com/joss/pkgforge/internal/plan"
)

// Record is one archived run.
type Record struct {
	ID          string
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string // ok / failed
	Error       string
	Installed   int
	Updated     int
	NotUpdated  int
	Current     int
	BuildTime   time.Duration
	InstallTime time.Duration
}

// Store is a sqlite-backed run log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	started_at   INTEGER NOT NULL,
	finished_at  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	installed    INTEGER NOT NULL,
	updated      INTEGER NOT NULL,
	not_updated  INTEGER NOT NULL,
	current      INTEGER NOT NULL,
	build_ms     INTEGER NOT NULL,
	install_ms   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// Open opens (and migrates) the history database. An empty path uses the
// default location under the pkgforge home.
func Open(path string) (*Store, error) {
	if path == "" {
		path = config.GetPaths().History
	}
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun archives one execution result. execErr is nil for clean runs.
func (s *Store) RecordRun(res *plan.Result, execErr error) (*Record, error) {
	rec := &Record{
		ID:          newID(res.FinishedAt),
		RunID:       res.RunID,
		StartedAt:   res.StartedAt,
		FinishedAt:  res.FinishedAt,
		Status:      "ok",
		Installed:   res.Installed,
		Updated:     res.Updated,
		NotUpdated:  res.NotUpdated,
		Current:     res.Current,
		BuildTime:   res.BuildTime,
		InstallTime: res.InstallTime,
	}
	if execErr != nil {
		rec.Status = "failed"
		rec.Error = execErr.Error()
	}

	_, err := s.db.Exec(`INSERT INTO runs
		(id, run_id, started_at, finished_at, status, error,
		 installed, updated, not_updated, current, build_ms, install_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
		rec.Status, rec.Error,
		rec.Installed, rec.Updated, rec.NotUpdated, rec.Current,
		rec.BuildTime.Milliseconds(), rec.InstallTime.Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	return rec, nil
}

// ListRecent returns the newest limit runs, newest first.
func (s *Store) ListRecent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`SELECT
		id, run_id, started_at, finished_at, status, error,
		installed, updated, not_updated, current, build_ms, install_ms
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var startMs, finishMs, buildMs, installMs int64
		if err := rows.Scan(&rec.ID, &rec.RunID, &startMs, &finishMs,
			&rec.Status, &rec.Error,
			&rec.Installed, &rec.Updated, &rec.NotUpdated, &rec.Current,
			&buildMs, &installMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(startMs)
		rec.FinishedAt = time.UnixMilli(finishMs)
		rec.BuildTime = time.Duration(buildMs) * time.Millisecond
		rec.InstallTime = time.Duration(installMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// newID mints a sortable record id.
func newID(at time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(at.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}
