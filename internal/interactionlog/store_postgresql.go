package interactionlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	pool          *pgxpool.Pool
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewPostgreSQLStore creates a PostgreSQL interaction log store. It
// creates the interactions table if needed and starts a background
// cleanup goroutine when retention is configured.
func NewPostgreSQLStore(pool *pgxpool.Pool, retentionDays int) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS interactions (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
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
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &PostgreSQLStore{
		pool:          pool,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}

	if retentionDays > 0 {
		go RunCleanupLoop(store.stopCleanup, store.cleanup)
	}

	return store, nil
}

// WriteBatch inserts records in a single transaction using pgx batching.
func (s *PostgreSQLStore) WriteBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO interactions (id, timestamp, mode, provider, model,
				question, answer, prompt_tokens, completion_tokens, total_tokens, error_message)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING
		`, r.ID, r.Timestamp, r.Mode, r.Provider, r.Model,
			r.Question, r.Answer, r.PromptTokens, r.CompletionTokens, r.TotalTokens, r.ErrorMessage)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert interactions batch: %w", err)
		}
	}
	return nil
}

// Flush is a no-op for PostgreSQL as writes are synchronous.
func (s *PostgreSQLStore) Flush(_ context.Context) error {
	return nil
}

// Close stops the cleanup goroutine. The pool itself belongs to the
// storage layer. Safe to call multiple times.
func (s *PostgreSQLStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

func (s *PostgreSQLStore) cleanup() {
	if s.retentionDays <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	result, err := s.pool.Exec(ctx, "DELETE FROM interactions WHERE timestamp < $1", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old interactions", "error", err)
		return
	}

	if result.RowsAffected() > 0 {
		slog.Info("cleaned up old interactions", "deleted", result.RowsAffected())
	}
}
