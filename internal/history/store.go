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

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"voicedecoder/internal/services"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
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
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
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

// Begin records a new running run. ID and StartedAt are filled in when empty.
func (s *Store) Begin(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.Input) == "" {
		return Run{}, services.Wrap(services.ErrValidation, "history", "begin", "input path required", nil)
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = StatusRunning
	run.FinishedAt = nil

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, content_hash, model, language, device, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Input,
		nullableString(run.ContentHash),
		run.Model,
		nullableString(run.Language),
		nullableString(run.Device),
		run.Status,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Finish records the outcome of a run started with Begin.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	if outcome.Status != StatusCompleted && outcome.Status != StatusFailed {
		return services.Wrap(services.ErrValidation, "history", "finish",
			fmt.Sprintf("invalid final status %q", outcome.Status), nil)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, device = COALESCE(?, device), failure_kind = ?, error_message = ?,
             document = ?, working_path = ?, converted = ?, segment_count = ?, finished_at = ?
         WHERE id = ?`,
		outcome.Status,
		nullableString(outcome.Device),
		nullableString(outcome.FailureKind),
		nullableString(outcome.ErrorMessage),
		nullableString(outcome.Document),
		nullableString(outcome.WorkingPath),
		boolToInt(outcome.Converted),
		outcome.SegmentCount,
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "history", "finish", "run "+id, nil)
	}
	return nil
}

// Get fetches a run by identifier. A unique ID prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "history", "get", "run id required", nil)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY started_at DESC LIMIT 2`,
		id, escapeLike(id)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	for i := range runs {
		if runs[i].ID == id {
			return &runs[i], nil
		}
	}
	switch len(runs) {
	case 0:
		return nil, services.Wrap(services.ErrNotFound, "history", "get", "run "+id, nil)
	case 1:
		return &runs[0], nil
	default:
		return nil, services.Wrap(services.ErrValidation, "history", "get", "run id prefix "+id+" is ambiguous", nil)
	}
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return scanRuns(rows)
}

// FindByHash returns the newest completed run for the same content and
// model, or nil when there is none.
func (s *Store) FindByHash(ctx context.Context, hash, model string) (*Run, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs
         WHERE content_hash = ? AND model = ? AND status = ?
         ORDER BY started_at DESC LIMIT 1`,
		hash, model, StatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// MarkInterrupted fails runs still marked running, for example after a crash.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, failure_kind = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusFailed, "interrupted", "run did not finish", time.Now().UTC().Format(time.RFC3339Nano), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted: %w", err)
	}
	return res.RowsAffected()
}

const runColumns = `id, input_path, content_hash, model, language, device, status, failure_kind,
    error_message, document, working_path, converted, segment_count, started_at, finished_at`

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			run       Run
			converted int
			started   string
			finished  sql.NullString
		)
		var hash, language, device, failure, errMsg, doc, workPath sql.NullString
		if err := rows.Scan(&run.ID, &run.Input, &hash, &run.Model, &language, &device, &run.Status,
			&failure, &errMsg, &doc, &workPath, &converted, &run.SegmentCount, &started, &finished); err != nil {
			return nil, err
		}
		run.ContentHash = hash.String
		run.Language = language.String
		run.Device = device.String
		run.FailureKind = failure.String
		run.ErrorMessage = errMsg.String
		run.Document = doc.String
		run.WorkingPath = workPath.String
		run.Converted = converted != 0
		startedAt, err := time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		run.StartedAt = startedAt
		if finished.Valid {
			finishedAt, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			run.FinishedAt = &finishedAt
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// escapeLike makes value match literally in a LIKE pattern with ESCAPE '\'.
func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// IsNotFound reports whether err means the run does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, services.ErrNotFound)
}
