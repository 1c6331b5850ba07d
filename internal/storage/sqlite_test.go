package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLite_CreatesDirectoryAndConnects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	s, err := NewSQLite(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, TypeSQLite, s.Type())
	assert.NotNil(t, s.SQLiteDB())
	assert.Nil(t, s.PostgreSQLPool())
	assert.Nil(t, s.MongoDatabase())

	var one int
	require.NoError(t, s.SQLiteDB().QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(context.Background(), Config{Type: "cassandra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, TypeSQLite, cfg.Type)
	assert.Equal(t, "data/lessonforge.db", cfg.SQLite.Path)
	assert.Equal(t, 10, cfg.PostgreSQL.MaxConns)
	assert.Equal(t, "lessonforge", cfg.MongoDB.Database)
}
