package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/qorix-chat/internal/config"
	"github.com/Rrens/qorix-chat/internal/domain"
)

type entry struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVStore implements domain.KVStore with one document per key
type KVStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open connects to MongoDB and selects the key/value collection
func Open(ctx context.Context, cfg config.MongoConfig) (*KVStore, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		clientOpts.SetConnectTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &KVStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return e.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *KVStore) Close() error {
	return s.client.Disconnect(context.Background())
}
