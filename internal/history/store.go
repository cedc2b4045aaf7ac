package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"channelsurfer/internal/config"
)

// Store manages the download ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// timeLayout is fixed width so timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Open initializes or connects to the ledger at the configured state path.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.HistoryPath())
}

// OpenPath opens the ledger stored at dbPath.
func OpenPath(dbPath string) (*Store, error) {
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

// Add records a finished download and returns it with its assigned ID.
func (s *Store) Add(ctx context.Context, entry Entry) (Entry, error) {
	if strings.TrimSpace(entry.Identifier) == "" {
		return Entry{}, errors.New("history entry requires an identifier")
	}
	if entry.Outcome == "" {
		return Entry{}, errors.New("history entry requires an outcome")
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.FinishedAt
	}
	entry.StartedAt = entry.StartedAt.UTC()
	entry.FinishedAt = entry.FinishedAt.UTC()

	res, err := s.execWithRetry(ctx,
		`INSERT INTO downloads (
            identifier, title, outcome, error_kind, message, bytes,
            artifact_path, correlation_id, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Identifier,
		nullableString(entry.Title),
		string(entry.Outcome),
		nullableString(entry.ErrorKind),
		nullableString(entry.Message),
		entry.Bytes,
		nullableString(entry.ArtifactPath),
		nullableString(entry.CorrelationID),
		entry.StartedAt.Format(timeLayout),
		entry.FinishedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert download: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

const selectColumns = `id, identifier, title, outcome, error_kind, message, bytes,
        artifact_path, correlation_id, started_at, finished_at`

// List returns the most recent entries first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT " + selectColumns + " FROM downloads ORDER BY finished_at DESC, id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ForIdentifier returns every attempt for one item, most recent first.
func (s *Store) ForIdentifier(ctx context.Context, identifier string) ([]Entry, error) {
	return s.query(ctx,
		"SELECT "+selectColumns+" FROM downloads WHERE identifier = ? ORDER BY finished_at DESC, id DESC",
		strings.TrimSpace(identifier),
	)
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, "DELETE FROM downloads")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	ctx = ensureContext(ctx)
	var entries []Entry
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		entries = entries[:0]
		for rows.Next() {
			entry, err := scanEntry(rows)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry         Entry
		title         sql.NullString
		outcome       string
		errorKind     sql.NullString
		message       sql.NullString
		artifactPath  sql.NullString
		correlationID sql.NullString
		startedAt     string
		finishedAt    string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Identifier,
		&title,
		&outcome,
		&errorKind,
		&message,
		&entry.Bytes,
		&artifactPath,
		&correlationID,
		&startedAt,
		&finishedAt,
	); err != nil {
		return Entry{}, err
	}
	entry.Title = title.String
	entry.Outcome = Outcome(outcome)
	entry.ErrorKind = errorKind.String
	entry.Message = message.String
	entry.ArtifactPath = artifactPath.String
	entry.CorrelationID = correlationID.String

	var err error
	if entry.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return Entry{}, fmt.Errorf("parse started_at: %w", err)
	}
	if entry.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
		return Entry{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return entry, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
