// Package history persists a record of each generation run.
//
// It uses SQLite so the `scopegen history` command can answer "what did
// the last run select, and when" without re-scanning the project.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Run is one completed generation run.
type Run struct {
	ID             string `json:"id"`
	ProjectTitle   string `json:"project_title"`
	ProjectRoot    string `json:"project_root"`
	StartedAt      string `json:"started_at"`
	DurationMillis int64  `json:"duration_millis"`
	DirectoryCount int    `json:"directory_count"`
}

// Directory is one focus directory captured by a run.
type Directory struct {
	RunID     string `json:"run_id"`
	Spec      string `json:"spec"`
	RelPath   string `json:"rel_path"`
	LineCount int    `json:"line_count"`
}

// Config holds history store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the database under ~/.scopegen.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".scopegen")}
}

// Store is the run-history engine backed by SQLite.
type Store struct {
	db *sql.DB
}

// New creates a Store, creating the data directory if needed, opening
// SQLite with WAL mode, and running migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "history.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			project_title   TEXT NOT NULL,
			project_root    TEXT NOT NULL,
			started_at      TEXT NOT NULL,
			duration_millis INTEGER NOT NULL DEFAULT 0,
			directory_count INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS run_directories (
			run_id     TEXT NOT NULL,
			spec       TEXT NOT NULL,
			rel_path   TEXT NOT NULL,
			line_count INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_rundirs_run  ON run_directories(run_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// RecordRun persists one run and its directories in a transaction.
func (s *Store) RecordRun(run Run, dirs []Directory) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	if run.StartedAt == "" {
		run.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}
	run.DirectoryCount = len(dirs)

	_, err = tx.Exec(`
		INSERT INTO runs (id, project_title, project_root, started_at, duration_millis, directory_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProjectTitle, run.ProjectRoot, run.StartedAt,
		run.DurationMillis, run.DirectoryCount,
	)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	for _, d := range dirs {
		_, err := tx.Exec(`
			INSERT INTO run_directories (run_id, spec, rel_path, line_count)
			VALUES (?, ?, ?, ?)`,
			run.ID, d.Spec, d.RelPath, d.LineCount,
		)
		if err != nil {
			return fmt.Errorf("history: insert directory %s: %w", d.RelPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, project_title, project_root, started_at, duration_millis, directory_count
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ProjectTitle, &r.ProjectRoot,
			&r.StartedAt, &r.DurationMillis, &r.DirectoryCount); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDirectories returns the directories captured by one run.
func (s *Store) RunDirectories(runID string) ([]Directory, error) {
	rows, err := s.db.Query(`
		SELECT run_id, spec, rel_path, line_count
		FROM run_directories WHERE run_id = ? ORDER BY rel_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query directories: %w", err)
	}
	defer rows.Close()

	var dirs []Directory
	for rows.Next() {
		var d Directory
		if err := rows.Scan(&d.RunID, &d.Spec, &d.RelPath, &d.LineCount); err != nil {
			return nil, fmt.Errorf("history: scan directory: %w", err)
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}
