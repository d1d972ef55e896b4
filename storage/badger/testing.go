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


package badger

import "github.com/quillstore/quillstore/storage"

// NewMemoryRepositories creates in-memory dataset, collection and file
// repositories for testing.
// Returns datasetRepo, collectionRepo, fileRepo, backend, and error.
// Caller must close the repos and backend when done.
func NewMemoryRepositories(fileOpts ...FileRepositoryOption) (storage.DatasetRepository, storage.CollectionRepository, storage.FileRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	datasetRepo, err := NewDatasetRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	collectionRepo, err := NewCollectionRepository(backend)
	if err != nil {
		datasetRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	fileRepo, err := NewFileRepository(backend, fileOpts...)
	if err != nil {
		collectionRepo.Close()
		datasetRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return datasetRepo, collectionRepo, fileRepo, backend, nil
}
