// Copyright 2025 Quillstore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package quillstore

import (
	"log/slog"

	"github.com/quillstore/quillstore/ai"
	"github.com/quillstore/quillstore/ai/openai"
	"github.com/quillstore/quillstore/auth"
	"github.com/quillstore/quillstore/extract"
	"github.com/quillstore/quillstore/ingestion"
	"github.com/quillstore/quillstore/storage"
	"github.com/quillstore/quillstore/storage/badger"
)

// Database bundles the storage backend, its repositories and the AI provider
// behind a single open/close lifecycle.
type Database struct {
	backend        *badger.Backend
	datasetRepo    storage.DatasetRepository
	collectionRepo storage.CollectionRepository
	fileRepo       storage.FileRepository
	provider       ai.Provider
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	fileOpts []badger.FileRepositoryOption
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithBucketQuota caps each blob-store bucket at the given byte budget.
func WithBucketQuota(quota int64) DatabaseOption {
	return func(o *databaseOptions) {
		o.fileOpts = append(o.fileOpts, badger.WithBucketQuota(quota))
	}
}

// WithInMemory opens the backend without on-disk persistence.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the backend at filePath and wires the repositories and
// the AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	datasetRepo, err := badger.NewDatasetRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	collectionRepo, err := badger.NewCollectionRepository(backend)
	if err != nil {
		datasetRepo.Close()
		backend.Close()
		return nil, err
	}

	fileRepo, err := badger.NewFileRepository(backend, options.fileOpts...)
	if err != nil {
		collectionRepo.Close()
		datasetRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		fileRepo.Close()
		collectionRepo.Close()
		datasetRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:        backend,
		datasetRepo:    datasetRepo,
		collectionRepo: collectionRepo,
		fileRepo:       fileRepo,
		provider:       provider,
		logger:         slog.Default(),
	}, nil
}

// Close releases the provider, repositories and backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.fileRepo.Close(); err != nil {
		db.logger.Error("error closing file repository", "err", err)
		return err
	}
	if err := db.collectionRepo.Close(); err != nil {
		db.logger.Error("error closing collection repository", "err", err)
		return err
	}
	if err := db.datasetRepo.Close(); err != nil {
		db.logger.Error("error closing dataset repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DatasetRepository() storage.DatasetRepository {
	return db.datasetRepo
}

func (db *Database) CollectionRepository() storage.CollectionRepository {
	return db.collectionRepo
}

func (db *Database) FileRepository() storage.FileRepository {
	return db.fileRepo
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

// NewAuthorizer creates a token authorizer backed by the dataset repository.
func (db *Database) NewAuthorizer(secret []byte, opts ...auth.Option) (*auth.TokenAuthorizer, error) {
	return auth.NewTokenAuthorizer(db.datasetRepo, secret, opts...)
}

// NewIngestionPipeline wires a complete ingestion pipeline from the database's
// repositories. The scratch store and authorizer are supplied by the caller;
// the registrar embeds with the database's AI provider.
func (db *Database) NewIngestionPipeline(scratch *ingestion.ScratchStore, authorizer auth.Authorizer,
	registrarOpts []ingestion.RegistrarOption, opts ...ingestion.PipelineOption) (*ingestion.Pipeline, error) {
	registrar, err := ingestion.NewCollectionRegistrar(db.collectionRepo, db.provider.Embedder(), registrarOpts...)
	if err != nil {
		return nil, err
	}
	return ingestion.NewPipeline(scratch, authorizer, extract.NewLocalExtractor(db.logger), db.fileRepo, registrar, opts...)
}
