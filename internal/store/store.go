// Package store defines the keyed record store the services persist to.
// Records are opaque documents grouped into buckets and carry a version
// used for compare-and-swap writes.
package store

import "context"

// Bucket names used by the services.
const (
	BucketUsers      = "users"
	BucketNotebooks  = "notebooks"
	BucketCategories = "categories"
	BucketReminders  = "reminders"
)

// Document is a stored record. Version starts at 1 on insert and increases
// by one on every successful replace.
type Document struct {
	Key     string
	Data    []byte
	Version int64
}

// Store is the interface for keyed document persistence.
// Implementations return apperr.ErrNotFound, apperr.ErrAlreadyExists and
// apperr.ErrConflict for the corresponding outcomes, and wrap driver
// failures with apperr.ErrStorage.
type Store interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, bucket, key string) (*Document, error)
	// Insert stores a new document, or ErrAlreadyExists if the key is taken.
	Insert(ctx context.Context, bucket, key string, data []byte) error
	// Replace overwrites the document if its stored version still equals
	// version. ErrConflict on a version mismatch, ErrNotFound if the
	// document no longer exists.
	Replace(ctx context.Context, bucket, key string, data []byte, version int64) error
	// Delete removes the document under key, or ErrNotFound.
	Delete(ctx context.Context, bucket, key string) error
	// Close releases the underlying connection.
	Close() error
}
