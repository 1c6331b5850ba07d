package interactionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := storage.NewSQLite(storage.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	store, err := NewSQLiteStore(s.SQLiteDB(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testRecord(mode string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Mode:      mode,
		Provider:  "groq",
		Model:     "llama3-70b-8192",
		Question:  "What is a goroutine?",
		Answer:    "A lightweight thread managed by the Go runtime.",

		PromptTokens:     15,
		CompletionTokens: 12,
		TotalTokens:      27,
	}
}

func TestSQLiteStore_WriteBatch(t *testing.T) {
	store := newTestStore(t)

	records := []*Record{testRecord(ModeAsk), testRecord(ModeLesson)}
	require.NoError(t, store.WriteBatch(context.Background(), records))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&count))
	assert.Equal(t, 2, count)

	var provider, answer string
	require.NoError(t, store.db.QueryRow(
		"SELECT provider, answer FROM interactions WHERE id = ?", records[0].ID,
	).Scan(&provider, &answer))
	assert.Equal(t, "groq", provider)
	assert.Equal(t, records[0].Answer, answer)
}

func TestSQLiteStore_WriteBatch_DuplicateIDIgnored(t *testing.T) {
	store := newTestStore(t)

	rec := testRecord(ModeAsk)
	require.NoError(t, store.WriteBatch(context.Background(), []*Record{rec}))
	require.NoError(t, store.WriteBatch(context.Background(), []*Record{rec}))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_WriteBatch_ChunksLargeBatches(t *testing.T) {
	store := newTestStore(t)

	records := make([]*Record, maxRecordsPerInsert+10)
	for i := range records {
		records[i] = testRecord(ModeAsk)
	}
	require.NoError(t, store.WriteBatch(context.Background(), records))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM interactions").Scan(&count))
	assert.Equal(t, len(records), count)
}

func TestSQLiteStore_WriteBatch_Empty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.WriteBatch(context.Background(), nil))
}
