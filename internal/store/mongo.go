package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/starford/keepnote/internal/apperr"
)

// mongoDoc is the wire shape of a stored document. The bucket maps to a
// collection, the key to _id.
type mongoDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo implements Store on a MongoDB database, one collection per bucket.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to the MongoDB instance at uri and selects database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: ping mongo: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Get returns the document stored under key.
func (m *Mongo) Get(ctx context.Context, bucket, key string) (*Document, error) {
	var doc mongoDoc
	err := m.db.Collection(bucket).FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("mongo get", err)
	}
	return &Document{Key: doc.Key, Data: doc.Data, Version: doc.Version}, nil
}

// Insert stores a new document at version 1.
func (m *Mongo) Insert(ctx context.Context, bucket, key string, data []byte) error {
	_, err := m.db.Collection(bucket).InsertOne(ctx, mongoDoc{
		Key:       key,
		Data:      data,
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrAlreadyExists
	}
	if err != nil {
		return apperr.Storage("mongo insert", err)
	}
	return nil
}

// Replace overwrites the document if the stored version still matches.
// The version is part of the filter, so the swap is a single atomic
// ReplaceOne and never needs a transaction.
func (m *Mongo) Replace(ctx context.Context, bucket, key string, data []byte, version int64) error {
	res, err := m.db.Collection(bucket).ReplaceOne(ctx,
		bson.M{"_id": key, "version": version},
		mongoDoc{Key: key, Data: data, Version: version + 1, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return apperr.Storage("mongo replace", err)
	}
	if res.MatchedCount == 0 {
		if _, err := m.Get(ctx, bucket, key); errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotFound
		}
		return apperr.ErrConflict
	}
	return nil
}

// Delete removes the document under key.
func (m *Mongo) Delete(ctx context.Context, bucket, key string) error {
	res, err := m.db.Collection(bucket).DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return apperr.Storage("mongo delete", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Verify *Mongo satisfies Store at compile time.
var _ Store = (*Mongo)(nil)
