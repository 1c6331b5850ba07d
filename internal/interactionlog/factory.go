package interactionlog

import (
	"context"
	"errors"
	"fmt"

	"lessonforge/config"
	"lessonforge/internal/storage"
)

// Result holds the initialized interaction logger and the storage
// connection backing it. The caller owns the lifecycle and must call
// Close() during shutdown.
type Result struct {
	Logger  Recorder
	Storage storage.Storage
}

// Close releases the logger and storage. Safe to call multiple times.
func (r *Result) Close() error {
	var errs []error
	if r.Logger != nil {
		if err := r.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("logger close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// New builds the interaction logger from application configuration.
// When logging is disabled it returns a NoopLogger with nil storage.
func New(ctx context.Context, cfg *config.Config) (*Result, error) {
	if !cfg.Logging.Enabled {
		return &Result{Logger: &NoopLogger{}}, nil
	}

	store, err := storage.New(ctx, buildStorageConfig(cfg.Storage))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	logStore, err := newStore(store, cfg.Logging.RetentionDays)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logCfg := Config{
		Enabled:       true,
		BufferSize:    cfg.Logging.BufferSize,
		FlushInterval: cfg.Logging.FlushInterval,
		RetentionDays: cfg.Logging.RetentionDays,
	}

	return &Result{
		Logger:  NewLogger(logStore, logCfg),
		Storage: store,
	}, nil
}

func buildStorageConfig(cfg config.StorageConfig) storage.Config {
	storageCfg := storage.Config{
		Type: cfg.Type,
		SQLite: storage.SQLiteConfig{
			Path: cfg.SQLitePath,
		},
		PostgreSQL: storage.PostgreSQLConfig{
			URL: cfg.PostgresURL,
		},
		MongoDB: storage.MongoDBConfig{
			URL:      cfg.MongoURL,
			Database: cfg.MongoDatabase,
		},
	}
	if storageCfg.Type == "" {
		storageCfg.Type = storage.TypeSQLite
	}
	return storageCfg
}

// newStore picks the Store implementation matching the connected backend.
func newStore(store storage.Storage, retentionDays int) (Store, error) {
	switch store.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(store.SQLiteDB(), retentionDays)
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(store.PostgreSQLPool(), retentionDays)
	case storage.TypeMongoDB:
		return NewMongoDBStore(store.MongoDatabase(), retentionDays)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", store.Type())
	}
}
