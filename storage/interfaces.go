package storage

import (
	"context"
	"io"

	"github.com/quillstore/quillstore/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DatasetRepository provides operations for managing datasets.
type DatasetRepository interface {
	Repository

	// AddDataset adds a dataset to storage.
	// Assigns a new id if the dataset has none and sets InsertedAt.
	AddDataset(ctx context.Context, dataset *core.Dataset) (*core.Dataset, error)

	// GetDataset retrieves a dataset by id.
	// Returns ErrNotFound if the dataset doesn't exist.
	GetDataset(ctx context.Context, id string) (*core.Dataset, error)

	// UpdateDataset updates an existing dataset.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the dataset doesn't exist.
	UpdateDataset(ctx context.Context, dataset *core.Dataset) (*core.Dataset, error)

	// DeleteDataset removes a dataset by id.
	// Returns ErrNotFound if the dataset doesn't exist.
	DeleteDataset(ctx context.Context, id string) error
}

// CollectionRepository provides operations for managing collections and their
// derived chunks.
type CollectionRepository interface {
	Repository

	// AddCollection atomically stores a collection together with its chunks.
	// Either the collection and every chunk are visible afterwards, or
	// nothing is. Chunk ids are generated from a sequence.
	AddCollection(ctx context.Context, collection *core.Collection, chunks []*core.Chunk) (*core.Collection, []*core.Chunk, error)

	// GetCollection retrieves a collection by id.
	// Returns ErrNotFound if the collection doesn't exist.
	GetCollection(ctx context.Context, id string) (*core.Collection, error)

	// GetChunks retrieves all chunks of a collection ordered by index.
	GetChunks(ctx context.Context, collectionID string) ([]*core.Chunk, error)

	// DeleteCollection removes a collection and its chunks.
	// Returns ErrNotFound if the collection doesn't exist.
	DeleteCollection(ctx context.Context, id string) error
}

// FileRepository is the durable blob store. It accepts a byte stream plus
// metadata and returns a stable file identifier whose lifetime is independent
// of the operation that created it.
type FileRepository interface {
	Repository

	// Store persists the stream under the given bucket and returns the file id.
	// The record's Size and Digest are computed from the stream.
	// Returns ErrQuotaExceeded if the bucket byte budget would be exceeded,
	// or ErrStorageUnavailable if the backend cannot accept the write.
	Store(ctx context.Context, bucket string, r io.Reader, record *core.FileRecord) (string, error)

	// Get retrieves the metadata record of a stored file.
	// Returns ErrNotFound if the file doesn't exist.
	Get(ctx context.Context, id string) (*core.FileRecord, error)

	// Open returns the stored bytes of a file.
	// Returns ErrNotFound if the file doesn't exist.
	Open(ctx context.Context, id string) ([]byte, error)

	// Delete removes a stored file and its metadata.
	// Returns ErrNotFound if the file doesn't exist.
	Delete(ctx context.Context, id string) error
}
