package types

import (
	"context"
	"encoding/json"
	"errors"
)

// Store is the uniform key/value and keyed-document access layer over the
// named collections. Engines are opened once with Open and shared by every
// consumer until Close.
type Store interface {
	// Open connects the store to the backend described by config and upgrades
	// the schema to CurrentSchemaVersion. Idempotent: callers racing on the
	// first Open all wait for the single upgrade; later calls return nil.
	Open(ctx context.Context, config Config) error

	// Close releases backend resources. Idempotent. After Close every
	// operation returns ErrStoreClosed.
	Close() error

	// Get returns the raw record stored under key.
	// Returns ErrNotFound if no record exists.
	Get(ctx context.Context, collection, key string) (json.RawMessage, error)

	// GetAll returns every record of the collection ordered by key.
	GetAll(ctx context.Context, collection string) ([]json.RawMessage, error)

	// GetAllEntries returns every key/value pair of the collection ordered by key.
	GetAllEntries(ctx context.Context, collection string) ([]Entry, error)

	// Put upserts one record. Document collections take the key from the
	// record's "id" field (key must be empty or match); key-value collections
	// require key.
	Put(ctx context.Context, collection string, value json.RawMessage, key string) error

	// PutAll upserts many document records in one transaction.
	PutAll(ctx context.Context, collection string, values []json.RawMessage) error

	// Delete removes the record stored under key.
	// Returns ErrNotFound if no record exists.
	Delete(ctx context.Context, collection, key string) error

	// Clear removes every record of the collection.
	Clear(ctx context.Context, collection string) error

	// Apply upserts every operation of the batch across collections in a
	// single transaction: either all operations land or none do.
	Apply(ctx context.Context, batch *Batch) error

	// SchemaVersion returns the persisted schema version.
	SchemaVersion(ctx context.Context) (int, error)
}

// Entry is one key/value pair. It is also the backup file shape of
// key-value collections.
type Entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Store errors.
var (
	ErrStoreClosed        = errors.New("store is closed")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidID          = errors.New("invalid record ID")
	ErrInvalidData        = errors.New("invalid record data")
)

// Record invariant errors.
var (
	ErrInvalidPriority    = errors.New("priority must be between 0 and 3")
	ErrInvalidDate        = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidFolderType  = errors.New("folder type must be note or journal")
	ErrInvalidGoalType    = errors.New("goal type must be habit or target")
	ErrUnknownMilestone   = errors.New("unknown milestone identifier")
	ErrInvalidParent      = errors.New("invalid parent task")
	ErrDuplicateShareID   = errors.New("share ID already in use")
	ErrFolderTypeMismatch = errors.New("folder type does not match record")
	ErrImmutableField     = errors.New("field is immutable")
)
