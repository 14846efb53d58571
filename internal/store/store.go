package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/selfatlas/selfatlas/internal/model"
)

// Store is the SQLite persistence layer. It exclusively owns the raw_items
// and inferences tables; all other components go through its methods.
//
// Writes are serialized with a mutex: SQLite is single-writer, and every
// operation is a short independent transaction so no lock is ever held
// across network I/O.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS raw_items (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			metadata_json TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS inferences (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			inference TEXT NOT NULL,
			confidence REAL NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			user_notes TEXT,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_inferences_status ON inferences(status, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_raw_items_timestamp ON raw_items(timestamp);`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// timeFormat keeps timestamps lexicographically ordered in TEXT columns
const timeFormat = time.RFC3339Nano

// UpsertRawItems inserts or updates raw items keyed by id. Re-ingesting an
// id overwrites its fields, never duplicates. Empty input is a no-op.
func (s *Store) UpsertRawItems(ctx context.Context, items []model.RawItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	count := 0
	for _, item := range items {
		md, err := json.Marshal(item.Metadata)
		if err != nil {
			return 0, fmt.Errorf("marshal metadata for %s: %w", item.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO raw_items(id, source, content, timestamp, metadata_json)
			 VALUES(?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   source=excluded.source,
			   content=excluded.content,
			   timestamp=excluded.timestamp,
			   metadata_json=excluded.metadata_json`,
			item.ID, item.Source, item.Content,
			item.Timestamp.UTC().Format(timeFormat), string(md))
		if err != nil {
			return 0, fmt.Errorf("upsert raw item %s: %w", item.ID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return count, nil
}

// ListRawItems returns raw items newest-timestamp-first, at most limit rows
func (s *Store) ListRawItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, content, timestamp, metadata_json
		 FROM raw_items ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list raw items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.RawItem
	for rows.Next() {
		var item model.RawItem
		var ts string
		var md sql.NullString
		if err := rows.Scan(&item.ID, &item.Source, &item.Content, &ts, &md); err != nil {
			return nil, fmt.Errorf("scan raw item: %w", err)
		}
		if t, err := time.Parse(timeFormat, ts); err == nil {
			item.Timestamp = t
		}
		if md.Valid && md.String != "" && md.String != "null" {
			// Malformed metadata degrades to nil rather than failing the listing
			_ = json.Unmarshal([]byte(md.String), &item.Metadata)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// InsertInference appends a new inference row. Status defaults to pending
// and created_at is assigned at insert time. A colliding id fails with
// ErrDuplicateID; existing rows are never silently overwritten.
func (s *Store) InsertInference(ctx context.Context, inf model.Inference) error {
	if inf.ID == "" {
		return errors.New("inference id is required")
	}
	status := inf.Status
	if status == "" {
		status = model.StatusPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM inferences WHERE id=?`, inf.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("inference %s: %w", inf.ID, ErrDuplicateID)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check inference id: %w", err)
	}

	var notes any
	if inf.UserNotes != nil {
		notes = *inf.UserNotes
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO inferences(id, source, content, inference, confidence, status, user_notes, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		inf.ID, inf.Source, inf.Content, inf.Inference, inf.Confidence,
		string(status), notes, s.now().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert inference %s: %w", inf.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// NextPendingInference returns the oldest pending inference (created_at
// ascending), the canonical FIFO hand-off to a reviewer. Returns ErrNotFound
// when the pending set is empty.
func (s *Store) NextPendingInference(ctx context.Context) (*model.Inference, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, content, inference, confidence, status, user_notes, created_at
		 FROM inferences WHERE status=? ORDER BY created_at ASC LIMIT 1`,
		string(model.StatusPending))

	inf, err := scanInference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pending inference: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("next pending inference: %w", err)
	}
	return inf, nil
}

// UpdateInferenceStatus performs the triage transition. Notes replace the
// stored value only when non-nil, otherwise the existing notes are kept.
// Repeating the same terminal transition is an idempotent success.
//
// Policy: re-triage across terminal states is allowed — approving and then
// rejecting deterministically leaves the row rejected. The row is never
// deleted; the table is the audit trail.
func (s *Store) UpdateInferenceStatus(ctx context.Context, id string, status model.Status, notes *string) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var notesArg any
	if notes != nil {
		notesArg = *notes
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE inferences SET status=?, user_notes=COALESCE(?, user_notes) WHERE id=?`,
		string(status), notesArg, id)
	if err != nil {
		return fmt.Errorf("update inference %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update inference %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("inference %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListInferences returns inferences ordered by created_at ascending,
// optionally filtered by status (empty status means all).
func (s *Store) ListInferences(ctx context.Context, status model.Status) ([]model.Inference, error) {
	query := `SELECT id, source, content, inference, confidence, status, user_notes, created_at
		  FROM inferences`
	args := []any{}
	if status != "" {
		query += ` WHERE status=?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Inference
	for rows.Next() {
		inf, err := scanInference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inference: %w", err)
		}
		out = append(out, *inf)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInference(row scanner) (*model.Inference, error) {
	var inf model.Inference
	var status, createdAt string
	var notes sql.NullString
	if err := row.Scan(&inf.ID, &inf.Source, &inf.Content, &inf.Inference,
		&inf.Confidence, &status, &notes, &createdAt); err != nil {
		return nil, err
	}
	inf.Status = model.Status(status)
	if notes.Valid {
		inf.UserNotes = &notes.String
	}
	if t, err := time.Parse(timeFormat, createdAt); err == nil {
		inf.CreatedAt = t
	}
	return &inf, nil
}
