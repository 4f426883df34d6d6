// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversion history in SQLite so unchanged inputs
// can be skipped on later runs.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/petrify/pkg/types"
)

// DefaultPath is the database location used when none is configured.
const DefaultPath = ".petrify/ledger.db"

// Entry is one input's most recent conversion.
type Entry struct {
	InputPath    string                 `json:"input_path" yaml:"input_path"`
	InputModTime time.Time              `json:"input_mod_time" yaml:"input_mod_time"`
	OutputPath   string                 `json:"output_path" yaml:"output_path"`
	Status       types.ConversionStatus `json:"status" yaml:"status"`
	Pages        int                    `json:"pages" yaml:"pages"`
	Strokes      int                    `json:"strokes" yaml:"strokes"`
	ConvertedAt  time.Time              `json:"converted_at" yaml:"converted_at"`
	Error        string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at cfg.Path (DefaultPath when empty)
// and creates the schema if it does not exist.
func Open(cfg types.LedgerConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			input_path TEXT PRIMARY KEY,
			input_mod_time TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			pages INTEGER,
			strokes INTEGER,
			converted_at TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Record upserts e, replacing any earlier entry for the same input.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ConvertedAt.IsZero() {
		e.ConvertedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (input_path, input_mod_time, output_path, status, pages, strokes, converted_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(input_path) DO UPDATE SET
			input_mod_time=excluded.input_mod_time, output_path=excluded.output_path,
			status=excluded.status, pages=excluded.pages, strokes=excluded.strokes,
			converted_at=excluded.converted_at, error=excluded.error`,
		e.InputPath, formatTime(e.InputModTime), e.OutputPath, string(e.Status),
		e.Pages, e.Strokes, formatTime(e.ConvertedAt), e.Error,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", e.InputPath, err)
	}
	return nil
}

// Unchanged reports whether inputPath was last converted successfully
// from a file with the given modification time and its output still
// exists.
func (s *Store) Unchanged(ctx context.Context, inputPath string, modTime time.Time) (bool, error) {
	e, ok, err := s.Get(ctx, inputPath)
	if err != nil || !ok {
		return false, err
	}
	if e.Status != types.ConversionDone || !e.InputModTime.Equal(modTime) {
		return false, nil
	}
	if _, err := os.Stat(e.OutputPath); err != nil {
		return false, nil
	}
	return true, nil
}

// Get returns the entry for inputPath. The bool is false when no entry
// exists.
func (s *Store) Get(ctx context.Context, inputPath string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT input_path, input_mod_time, output_path, status, pages, strokes, converted_at, error
		 FROM conversions WHERE input_path = ?`, inputPath)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading %s: %w", inputPath, err)
	}
	return e, true, nil
}

// List returns all entries ordered by input path. A non-empty status
// filters on it.
func (s *Store) List(ctx context.Context, status types.ConversionStatus) ([]Entry, error) {
	query := `SELECT input_path, input_mod_time, output_path, status, pages, strokes, converted_at, error
		FROM conversions`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY input_path`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e                    Entry
		modTime, convertedAt string
		status               string
		outputPath, errText  sql.NullString
		pages, strokes       sql.NullInt64
	)
	if err := sc.Scan(&e.InputPath, &modTime, &outputPath, &status, &pages, &strokes, &convertedAt, &errText); err != nil {
		return Entry{}, err
	}
	e.OutputPath = outputPath.String
	e.Status = types.ConversionStatus(status)
	e.Pages = int(pages.Int64)
	e.Strokes = int(strokes.Int64)
	e.Error = errText.String

	var err error
	if e.InputModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
		return Entry{}, fmt.Errorf("parsing input_mod_time: %w", err)
	}
	if e.ConvertedAt, err = time.Parse(time.RFC3339Nano, convertedAt); err != nil {
		return Entry{}, fmt.Errorf("parsing converted_at: %w", err)
	}
	return e, nil
}
