package interactionlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoDBStore implements Store for MongoDB. Retention is handled by a
// TTL index instead of a cleanup goroutine.
type MongoDBStore struct {
	collection *mongo.Collection
}

// NewMongoDBStore creates a MongoDB interaction log store and ensures
// its indexes exist.
func NewMongoDBStore(database *mongo.Database, retentionDays int) (*MongoDBStore, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	collection := database.Collection("interactions")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "mode", Value: 1}}},
		{Keys: bson.D{{Key: "provider", Value: 1}}},
	}
	if retentionDays > 0 {
		ttlSeconds := int32(retentionDays * 24 * 60 * 60)
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(ttlSeconds),
		})
	} else {
		indexes = append(indexes, mongo.IndexModel{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		})
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist with different options
		slog.Warn("failed to create some MongoDB indexes", "error", err)
	}

	return &MongoDBStore{collection: collection}, nil
}

// WriteBatch inserts records with an unordered InsertMany so one bad
// document does not sink the rest of the batch.
func (s *MongoDBStore) WriteBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}

	opts := options.InsertMany().SetOrdered(false)
	if _, err := s.collection.InsertMany(ctx, docs, opts); err != nil {
		if bulkErr, ok := err.(mongo.BulkWriteException); ok {
			slog.Warn("partial interaction log insert failure",
				"total", len(records),
				"errors", len(bulkErr.WriteErrors),
			)
			return nil
		}
		return fmt.Errorf("failed to insert interactions: %w", err)
	}

	return nil
}

// Flush is a no-op for MongoDB as writes are synchronous.
func (s *MongoDBStore) Flush(_ context.Context) error {
	return nil
}

// Close is a no-op; the client belongs to the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
