package interactionlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SQLite caps bindable parameters at 999 per query. With 11 columns per
// record we chunk batches at 90 records (90 * 11 = 990) to stay under it.
const (
	maxSQLiteParams     = 999
	columnsPerRecord    = 11
	maxRecordsPerInsert = maxSQLiteParams / columnsPerRecord
)

// SQLiteStore implements Store for SQLite databases.
type SQLiteStore struct {
	db            *sql.DB
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewSQLiteStore creates a SQLite interaction log store. It creates the
// interactions table if needed and starts a background cleanup goroutine
// when retention is configured.
func NewSQLiteStore(db *sql.DB, retentionDays int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			mode TEXT,
			provider TEXT,
			model TEXT,
			question TEXT,
			answer TEXT,
			prompt_tokens INTEGER DEFAULT 0,
			completion_tokens INTEGER DEFAULT 0,
			total_tokens INTEGER DEFAULT 0,
			error_message TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create interactions table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_interactions_mode ON interactions(mode)",
		"CREATE INDEX IF NOT EXISTS idx_interactions_provider ON interactions(provider)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &SQLiteStore{
		db:            db,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, store.cleanup)
	}

	return store, nil
}

// WriteBatch inserts records in chunks sized for SQLite's parameter limit.
func (s *SQLiteStore) WriteBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	for i := 0; i < len(records); i += maxRecordsPerInsert {
		end := i + maxRecordsPerInsert
		if end > len(records) {
			end = len(records)
		}
		chunk := records[i:end]

		placeholders := make([]string, len(chunk))
		values := make([]interface{}, 0, len(chunk)*columnsPerRecord)

		for j, r := range chunk {
			placeholders[j] = "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
			values = append(values,
				r.ID,
				r.Timestamp.UTC().Format(time.RFC3339Nano),
				r.Mode,
				r.Provider,
				r.Model,
				r.Question,
				r.Answer,
				r.PromptTokens,
				r.CompletionTokens,
				r.TotalTokens,
				r.ErrorMessage,
			)
		}

		query := `INSERT OR IGNORE INTO interactions (id, timestamp, mode, provider, model,
			question, answer, prompt_tokens, completion_tokens, total_tokens, error_message) VALUES ` +
			strings.Join(placeholders, ",")

		if _, err := s.db.ExecContext(ctx, query, values...); err != nil {
			return fmt.Errorf("failed to insert interactions batch %d: %w", i/maxRecordsPerInsert, err)
		}
	}

	return nil
}

// Flush is a no-op for SQLite as writes are synchronous.
func (s *SQLiteStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. The DB itself belongs to the
// storage layer. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

func (s *SQLiteStore) cleanup() {
	if s.retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays).UTC().Format(time.RFC3339)

	result, err := s.db.Exec("DELETE FROM interactions WHERE timestamp < ?", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old interactions", "error", err)
		return
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
		slog.Info("cleaned up old interactions", "deleted", rowsAffected)
	}
}
