package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
)

// DatasetRepository implements storage.DatasetRepository for BadgerDB.
type DatasetRepository struct {
	backend *Backend
}

var _ storage.DatasetRepository = (*DatasetRepository)(nil)

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(backend *Backend) (*DatasetRepository, error) {
	return &DatasetRepository{backend: backend}, nil
}

// Close implements storage.Repository. The repository holds no resources of
// its own.
func (r *DatasetRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DatasetRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDataset adds a dataset to storage.
func (r *DatasetRepository) AddDataset(ctx context.Context, dataset *core.Dataset) (*core.Dataset, error) {
	if err := core.ValidateDataset(dataset); err != nil {
		return nil, err
	}

	if dataset.Id == "" {
		dataset.Id = core.NewRecordID()
	}
	dataset.InsertedAt = time.Now().UTC()
	dataset.UpdatedAt = dataset.InsertedAt

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDatasetKey(dataset.Id)
		if _, err := tx.Get(key); err == nil {
			return storage.ErrDuplicateKey
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(key, storage.MarshalDataset(dataset)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return dataset, nil
}

// GetDataset retrieves a dataset by id.
func (r *DatasetRepository) GetDataset(ctx context.Context, id string) (*core.Dataset, error) {
	var dataset *core.Dataset

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDatasetKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			dataset, err = storage.UnmarshalDataset(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}

	return dataset, nil
}

// UpdateDataset updates an existing dataset.
func (r *DatasetRepository) UpdateDataset(ctx context.Context, dataset *core.Dataset) (*core.Dataset, error) {
	if err := core.ValidateDataset(dataset); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDatasetKey(dataset.Id)
		if _, err := tx.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		} else if err != nil {
			return err
		}
		dataset.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalDataset(dataset)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return dataset, nil
}

// DeleteDataset removes a dataset by id.
func (r *DatasetRepository) DeleteDataset(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDatasetKey(id)
		if _, err := tx.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		} else if err != nil {
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
