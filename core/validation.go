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


package core

import "fmt"

// ValidateDataset validates a Dataset according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - TeamId must not be empty
//   - All member roles must be valid
//
// NOT validated:
//   - Id (assigned by the repository on insert)
//   - Members may be empty (a dataset without members is unreachable but legal)
func ValidateDataset(dataset *Dataset) error {
	if dataset == nil {
		return fmt.Errorf("%w: dataset is nil", ErrInvalidDataset)
	}

	if dataset.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, ErrEmptyName)
	}

	if dataset.TeamId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, ErrEmptyTeam)
	}

	for _, m := range dataset.Members {
		if err := ValidateRole(m.Role); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
		}
	}

	return nil
}

// ValidateCollection validates a Collection according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - DatasetId must not be empty
//   - Type must be valid
//
// NOT validated:
//   - FileId (empty for collections not derived from a file)
//   - Metadata (free-form)
func ValidateCollection(collection *Collection) error {
	if collection == nil {
		return fmt.Errorf("%w: collection is nil", ErrInvalidCollection)
	}

	if collection.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, ErrEmptyName)
	}

	if collection.DatasetId == "" {
		return fmt.Errorf("%w: dataset id cannot be empty", ErrInvalidCollection)
	}

	if err := ValidateCollectionType(collection.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, err)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - CollectionId must not be empty
//   - Index must not be negative
//
// NOT validated:
//   - Vector (can be empty until embedded)
//   - Id (0 is valid from database sequences)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.CollectionId == "" {
		return fmt.Errorf("%w: collection id cannot be empty", ErrInvalidChunk)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: index cannot be negative", ErrInvalidChunk)
	}

	return nil
}

// ValidateFileRecord validates a FileRecord according to domain rules.
//
// Validation rules:
//   - Bucket must not be empty
//   - Name must not be empty
//   - Size must not be negative
func ValidateFileRecord(record *FileRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidFileRecord)
	}

	if record.Bucket == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFileRecord, ErrEmptyBucket)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFileRecord, ErrEmptyName)
	}

	if record.Size < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFileRecord, ErrNegativeSize)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	switch role {
	case RoleOwner, RoleWriter, RoleReader:
		return nil
	default:
		return ErrInvalidRole
	}
}

// ValidateCollectionType validates that a CollectionType has a valid value.
func ValidateCollectionType(t CollectionType) error {
	switch t {
	case CollectionTypeFile:
		return nil
	default:
		return ErrInvalidCollectionType
	}
}
