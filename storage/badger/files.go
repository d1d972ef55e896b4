package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
)

// FileRepository implements storage.FileRepository for BadgerDB. File bytes
// and metadata are stored under separate keys so metadata reads never load
// blob content.
type FileRepository struct {
	backend     *Backend
	bucketQuota int64 // max stored bytes per bucket, 0 means unlimited
}

var _ storage.FileRepository = (*FileRepository)(nil)

// FileRepositoryOption configures a FileRepository.
type FileRepositoryOption func(*FileRepository)

// WithBucketQuota sets the maximum total bytes stored per bucket.
// Zero disables the quota.
func WithBucketQuota(quota int64) FileRepositoryOption {
	return func(r *FileRepository) {
		r.bucketQuota = quota
	}
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(backend *Backend, opts ...FileRepositoryOption) (*FileRepository, error) {
	r := &FileRepository{backend: backend}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Close implements storage.Repository. The repository holds no resources of
// its own.
func (r *FileRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// Store persists the stream under the given bucket and returns the file id.
func (r *FileRepository) Store(ctx context.Context, bucket string, reader io.Reader, record *core.FileRecord) (string, error) {
	if bucket == "" {
		return "", fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, core.ErrEmptyBucket)
	}
	if r.backend.IsClosed() {
		return "", fmt.Errorf("%w: backend closed", storage.ErrStorageUnavailable)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: reading stream: %w", storage.ErrStorageUnavailable, err)
	}

	stored := *record
	stored.Id = core.NewRecordID()
	stored.Bucket = bucket
	stored.Size = int64(len(data))
	stored.Digest = core.DigestFromContent(data)
	stored.InsertedAt = time.Now().UTC()

	if err := core.ValidateFileRecord(&stored); err != nil {
		return "", err
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		usage, err := readBucketUsage(tx, bucket)
		if err != nil {
			return err
		}
		if r.bucketQuota > 0 && usage+stored.Size > r.bucketQuota {
			return storage.ErrQuotaExceeded
		}

		if err := tx.Set(makeFileDataKey(stored.Id), data); err != nil {
			return err
		}
		if err := tx.Set(makeFileRecordKey(stored.Id), storage.MarshalFileRecord(&stored)); err != nil {
			return err
		}
		if err := writeBucketUsage(tx, bucket, usage+stored.Size); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}

	*record = stored
	return stored.Id, nil
}

// Get retrieves the metadata record of a stored file.
func (r *FileRepository) Get(ctx context.Context, id string) (*core.FileRecord, error) {
	var record *core.FileRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFileRecordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err = storage.UnmarshalFileRecord(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Open returns the stored bytes of a file.
func (r *FileRepository) Open(ctx context.Context, id string) ([]byte, error) {
	var data []byte

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFileDataKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// Delete removes a stored file and its metadata, releasing its bucket usage.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeFileDataKey(id)); err != nil {
			return err
		}
		if err := tx.Delete(makeFileRecordKey(id)); err != nil {
			return err
		}

		usage, err := readBucketUsage(tx, record.Bucket)
		if err != nil {
			return err
		}
		usage -= record.Size
		if usage < 0 {
			usage = 0
		}
		if err := writeBucketUsage(tx, record.Bucket, usage); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func readBucketUsage(tx *badger.Txn, bucket string) (int64, error) {
	item, err := tx.Get(makeBucketUsageKey(bucket))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var usage int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return storage.ErrSerializationFailed
		}
		usage = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	return usage, err
}

func writeBucketUsage(tx *badger.Txn, bucket string, usage int64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(usage))
	return tx.Set(makeBucketUsageKey(bucket), buf)
}
