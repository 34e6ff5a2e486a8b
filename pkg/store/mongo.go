package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/flagkit/pkg/flag"
)

// DefaultMongoCollection is the collection flag records are stored in
// unless overridden.
const DefaultMongoCollection = "feature_flags"

// MongoStore persists flag records as documents keyed by the flag key.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// mongoDoc pins the flag key as the document id so upserts are
// last-write-wins per key.
type mongoDoc struct {
	Key    string    `bson:"_id"`
	Record flag.Flag `bson:"record"`
}

// MongoStoreOption configures a MongoStore.
type MongoStoreOption func(*mongoStoreConfig)

type mongoStoreConfig struct {
	collection string
}

// WithMongoCollection overrides the collection name.
func WithMongoCollection(name string) MongoStoreOption {
	return func(c *mongoStoreConfig) {
		if name != "" {
			c.collection = name
		}
	}
}

// NewMongoStore creates a Mongo-backed store on the given database. The
// store takes ownership of the client; Close disconnects it.
func NewMongoStore(client *mongo.Client, database string, opts ...MongoStoreOption) *MongoStore {
	cfg := mongoStoreConfig{collection: DefaultMongoCollection}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(cfg.collection),
	}
}

func (s *MongoStore) Get(ctx context.Context, key string) (*flag.Flag, error) {
	var doc mongoDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &doc.Record, nil
}

func (s *MongoStore) Set(ctx context.Context, record *flag.Flag) error {
	if err := record.Validate(); err != nil {
		return err
	}

	doc := mongoDoc{Key: record.Key, Record: *record}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": record.Key}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, unavailable(err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) ListAll(ctx context.Context) ([]*flag.Flag, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable(err)
	}
	defer cursor.Close(ctx)

	var records []*flag.Flag
	for cursor.Next(ctx) {
		var doc mongoDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		record := doc.Record
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, unavailable(err)
	}
	return records, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
