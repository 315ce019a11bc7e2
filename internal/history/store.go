package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one finished job.
type Entry struct {
	ID           string
	Operation    string
	Input        string
	Output       string
	State        string
	ExitCode     int
	Encoder      string
	ErrorKind    string
	ErrorMessage string
	Warnings     []string
	StartedAt    time.Time
	FinishedAt   time.Time
	Elapsed      time.Duration
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	State     string
	Operation string
	Limit     int
}

// Store manages job history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add inserts or replaces an entry.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("history entry requires an id")
	}
	warnings, err := json.Marshal(entry.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.FinishedAt.Add(-entry.Elapsed)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO jobs (
            id, operation, input_path, output_path, state, exit_code, encoder,
            error_kind, error_message, warnings_json, started_at, finished_at, elapsed_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Operation,
		entry.Input,
		nullableString(entry.Output),
		entry.State,
		entry.ExitCode,
		nullableString(entry.Encoder),
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorMessage),
		nullableWarnings(entry.Warnings, warnings),
		entry.StartedAt.UTC().Format(timeLayout),
		entry.FinishedAt.UTC().Format(timeLayout),
		entry.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = `id, operation, input_path, output_path, state, exit_code, encoder,
    error_kind, error_message, warnings_json, started_at, finished_at, elapsed_ms`

// Get returns the entry with id, or nil when none exists.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM jobs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM jobs`
	var (
		clauses []string
		args    []any
	)
	if filter.State != "" {
		clauses = append(clauses, "state = ?")
		args = append(args, filter.State)
	}
	if filter.Operation != "" {
		clauses = append(clauses, "operation = ?")
		args = append(args, filter.Operation)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY finished_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Stats returns entry counts grouped by state.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// Prune deletes entries that finished before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE finished_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry                                          Entry
		output, encoder, errorKind, errorMsg, warnings sql.NullString
		startedRaw, finishedRaw                        string
		elapsedMS                                      int64
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Operation,
		&entry.Input,
		&output,
		&entry.State,
		&entry.ExitCode,
		&encoder,
		&errorKind,
		&errorMsg,
		&warnings,
		&startedRaw,
		&finishedRaw,
		&elapsedMS,
	); err != nil {
		return nil, err
	}
	entry.Output = output.String
	entry.Encoder = encoder.String
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMsg.String
	if warnings.Valid && warnings.String != "" {
		if err := json.Unmarshal([]byte(warnings.String), &entry.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if t, err := time.Parse(timeLayout, startedRaw); err == nil {
		entry.StartedAt = t
	}
	if t, err := time.Parse(timeLayout, finishedRaw); err == nil {
		entry.FinishedAt = t
	}
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableWarnings(warnings []string, encoded []byte) any {
	if len(warnings) == 0 {
		return nil
	}
	return string(encoded)
}
