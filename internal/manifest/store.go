// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records generation runs in a local SQLite database.
// Every artifact is recorded as soon as its document is written, so an
// interrupted run can be resumed, or its marketplace metadata rebuilt,
// from the manifest alone.
package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/collection-engine/pkg/types"
)

// DBFile is the manifest file name inside the metadata directory.
const DBFile = "manifest.db"

// ErrNoRun is returned when the manifest holds no runs.
var ErrNoRun = errors.New("no generation run recorded")

// Run describes one generation run.
type Run struct {
	ID         string
	Collection string
	Mode       types.SelectionMode
	Seed       uint64
	Config     types.GeneratorConfig
	StartedAt  time.Time
	FinishedAt time.Time
}

// Finished reports whether the run completed.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Entry is one recorded artifact.
type Entry struct {
	Index  int
	Key    string
	Name   string
	Traits []types.LayerTrait
	File   string
}

// Store manages the manifest database.
type Store struct {
	db *sql.DB
}

// Open opens or creates dir/manifest.db and its schema.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// OpenExisting opens dir/manifest.db only if it already exists. A missing
// manifest yields ErrNoRun rather than an empty database.
func OpenExisting(dir string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoRun, dir)
		}
		return nil, fmt.Errorf("checking manifest: %w", err)
	}
	return Open(dir)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL,
			config TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			trait_key TEXT NOT NULL,
			name TEXT NOT NULL,
			traits TEXT NOT NULL,
			file TEXT NOT NULL,
			PRIMARY KEY (run_id, idx),
			UNIQUE (run_id, trait_key)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Begin records the start of a run.
func (s *Store) Begin(ctx context.Context, run Run) error {
	cfgJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("encoding run config: %w", err)
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, collection, mode, seed, config, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Collection, string(run.Mode), int64(run.Seed), string(cfgJSON),
		started.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// Record stores one written artifact.
func (s *Store) Record(ctx context.Context, runID string, e Entry) error {
	traitsJSON, err := json.Marshal(e.Traits)
	if err != nil {
		return fmt.Errorf("encoding traits: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, idx, trait_key, name, traits, file) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, e.Index, e.Key, e.Name, string(traitsJSON), e.File,
	)
	if err != nil {
		return fmt.Errorf("recording artifact %d: %w", e.Index, err)
	}
	return nil
}

// Finish marks a run as complete.
func (s *Store) Finish(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: %w", runID, ErrNoRun)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var (
		run           Run
		mode, cfgJSON string
		seed          int64
		started       string
		finished      sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, collection, mode, seed, config, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &run.Collection, &mode, &seed, &cfgJSON, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying latest run: %w", err)
	}

	run.Mode = types.SelectionMode(mode)
	run.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("decoding run config: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parsing start time: %w", err)
	}
	if finished.Valid {
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
			return Run{}, fmt.Errorf("parsing finish time: %w", err)
		}
	}
	return run, nil
}

// Artifacts returns the recorded artifacts of a run in index order.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, trait_key, name, traits, file FROM artifacts WHERE run_id = ? ORDER BY idx`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			traitsJSON string
		)
		if err := rows.Scan(&e.Index, &e.Key, &e.Name, &traitsJSON, &e.File); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		if err := json.Unmarshal([]byte(traitsJSON), &e.Traits); err != nil {
			return nil, fmt.Errorf("decoding traits of artifact %d: %w", e.Index, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
