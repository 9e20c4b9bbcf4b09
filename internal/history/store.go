package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timestampLayout is fixed width so recorded_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Status is the outcome of one track export.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one recorded track outcome.
type Entry struct {
	ID                int64
	RunID             string
	SourcePath        string
	ReferenceDuration float64
	TrackID           int
	TypeOrder         int
	Language          string
	Action            string
	Difference        float64
	OutputPath        string
	Status            Status
	ErrorMessage      string
	RecordedAt        time.Time
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("history: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a track outcome. A zero RecordedAt is stamped with the
// current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.RunID) == "" {
		return errors.New("history record: run id required")
	}
	if entry.Status == "" {
		entry.Status = StatusOK
	}
	recorded := entry.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO track_outcomes (
            run_id, source_path, reference_duration, track_id, type_order,
            language, action, difference, output_path, status, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.SourcePath,
		entry.ReferenceDuration,
		entry.TrackID,
		entry.TypeOrder,
		nullableString(entry.Language),
		entry.Action,
		entry.Difference,
		nullableString(entry.OutputPath),
		string(entry.Status),
		nullableString(entry.ErrorMessage),
		recorded.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert track outcome: %w", err)
	}
	return nil
}

// Recent returns up to limit outcomes, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, run_id, source_path, reference_duration, track_id, type_order,
        language, action, difference, output_path, status, error_message, recorded_at
        FROM track_outcomes ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ForRun returns the outcomes recorded by one run in insertion order.
func (s *Store) ForRun(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, `SELECT id, run_id, source_path, reference_duration, track_id, type_order,
        language, action, difference, output_path, status, error_message, recorded_at
        FROM track_outcomes WHERE run_id = ? ORDER BY id`, runID)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query track outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate track outcomes: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry     Entry
		language  sql.NullString
		output    sql.NullString
		errMsg    sql.NullString
		status    string
		timestamp string
	)
	if err := rows.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.SourcePath,
		&entry.ReferenceDuration,
		&entry.TrackID,
		&entry.TypeOrder,
		&language,
		&entry.Action,
		&entry.Difference,
		&output,
		&status,
		&errMsg,
		&timestamp,
	); err != nil {
		return Entry{}, fmt.Errorf("scan track outcome: %w", err)
	}
	entry.Language = language.String
	entry.OutputPath = output.String
	entry.ErrorMessage = errMsg.String
	entry.Status = Status(status)
	if ts, err := time.Parse(timestampLayout, timestamp); err == nil {
		entry.RecordedAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
