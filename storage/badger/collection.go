package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
)

// CollectionRepository implements storage.CollectionRepository for BadgerDB.
type CollectionRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a new CollectionRepository.
func NewCollectionRepository(backend *Backend) (*CollectionRepository, error) {
	idSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}

	return &CollectionRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the chunk ID sequence.
func (r *CollectionRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CollectionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCollection atomically stores a collection together with its chunks.
func (r *CollectionRepository) AddCollection(ctx context.Context, collection *core.Collection, chunks []*core.Chunk) (*core.Collection, []*core.Chunk, error) {
	if err := core.ValidateCollection(collection); err != nil {
		return nil, nil, err
	}

	if collection.Id == "" {
		collection.Id = core.NewRecordID()
	}
	collection.InsertedAt = time.Now().UTC()
	collection.UpdatedAt = collection.InsertedAt

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(collection.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, storage.MarshalCollection(collection)); err != nil {
			return err
		}

		// Dataset index
		dsKey := makeCollectionDatasetKey(collection.DatasetId, collection.Id)
		if err := tx.Set(dsKey, []byte(collection.Id)); err != nil {
			return err
		}

		for _, chunk := range chunks {
			chunk.CollectionId = collection.Id
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			chunk.Id = core.ID(nextID)
			chunk.InsertedAt = collection.InsertedAt

			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Collection index, ordered by chunk index
			colKey := makeChunkCollectionKey(collection.Id, chunk.Index)
			if err := tx.Set(colKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, nil, err
	}

	return collection, chunks, nil
}

// GetCollection retrieves a collection by id.
func (r *CollectionRepository) GetCollection(ctx context.Context, id string) (*core.Collection, error) {
	var collection *core.Collection

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			collection, err = storage.UnmarshalCollection(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return collection, nil
}

// GetChunks retrieves all chunks of a collection ordered by index.
func (r *CollectionRepository) GetChunks(ctx context.Context, collectionID string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialChunkCollectionKey(collectionID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				chunks = append(chunks, chunk)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// DeleteCollection removes a collection and its chunks.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, id string) error {
	chunks, err := r.GetChunks(ctx, id)
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		var collection *core.Collection
		item, err := tx.Get(makeCollectionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			collection, err = storage.UnmarshalCollection(val)
			return err
		}); err != nil {
			return err
		}

		for _, chunk := range chunks {
			if err := tx.Delete(makeChunkKey(chunk.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkCollectionKey(id, chunk.Index)); err != nil {
				return err
			}
		}

		if err := tx.Delete(makeCollectionDatasetKey(collection.DatasetId, id)); err != nil {
			return err
		}
		if err := tx.Delete(makeCollectionKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
