// Package history persists completed enhancements in a local SQLite file.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const DefaultLimit = 50

var ErrNotFound = errors.New("history entry not found")

// Entry is one completed enhancement.
type Entry struct {
	ID             string    `json:"id"`
	OriginalPrompt string    `json:"originalPrompt"`
	EnhancedPrompt string    `json:"enhancedPrompt"`
	Category       string    `json:"category"`
	Model          string    `json:"model"`
	Changes        []string  `json:"changes"`
	Timestamp      time.Time `json:"timestamp"`
}

// Store keeps at most limit entries, newest first.
type Store struct {
	db     *sql.DB
	limit  int
	logger *zap.Logger
}

type Option func(*Store)

// WithLimit sets how many entries are kept. Non-positive values keep the default.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("history")
		}
	}
}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	s := &Store{db: db, limit: DefaultLimit, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		original_prompt TEXT NOT NULL,
		enhanced_prompt TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		changes TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Limit() int {
	return s.limit
}

// Add stores e as the newest entry and drops whatever falls past the limit.
// A missing ID or timestamp is filled in; the stored entry is returned.
func (s *Store) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.Round(time.Millisecond)
	if e.Changes == nil {
		e.Changes = []string{}
	}

	changes, err := json.Marshal(e.Changes)
	if err != nil {
		return Entry{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, original_prompt, enhanced_prompt, category, model, changes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OriginalPrompt, e.EnhancedPrompt, e.Category, e.Model, string(changes), e.Timestamp.UnixMilli())
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert history entry: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM entries WHERE seq NOT IN (
			SELECT seq FROM entries ORDER BY seq DESC LIMIT ?
		)`, s.limit)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to prune history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug("pruned history", zap.Int64("removed", n))
	}
	return e, nil
}

// List returns all entries, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, original_prompt, enhanced_prompt, category, model, changes, created_at
		FROM entries ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, original_prompt, enhanced_prompt, category, model, changes, created_at
		FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		changes string
		millis  int64
	)
	if err := sc.Scan(&e.ID, &e.OriginalPrompt, &e.EnhancedPrompt, &e.Category, &e.Model, &changes, &millis); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(changes), &e.Changes); err != nil {
		return Entry{}, fmt.Errorf("corrupt changes for %s: %w", e.ID, err)
	}
	e.Timestamp = time.UnixMilli(millis)
	return e, nil
}
