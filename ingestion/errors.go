package ingestion

import "errors"

var (
	// ErrSizeLimitExceeded is returned when an inbound stream exceeds the
	// configured maximum upload size.
	ErrSizeLimitExceeded = errors.New("upload size limit exceeded")

	// ErrEmptyFile is returned when the inbound stream contains no bytes.
	ErrEmptyFile = errors.New("uploaded file is empty")

	// ErrRegistrationFailed wraps any failure while creating the collection
	// record and its derived chunks.
	ErrRegistrationFailed = errors.New("collection registration failed")

	// ErrScratchStoreRequired is returned when a scratch store is not provided.
	ErrScratchStoreRequired = errors.New("scratch store required")

	// ErrAuthorizerRequired is returned when an authorizer is not provided.
	ErrAuthorizerRequired = errors.New("authorizer required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrFileRepositoryRequired is returned when a file repository is not provided.
	ErrFileRepositoryRequired = errors.New("file repository required")

	// ErrRegistrarRequired is returned when a registrar is not provided.
	ErrRegistrarRequired = errors.New("registrar required")

	// ErrCollectionRepositoryRequired is returned when a collection repository is not provided.
	ErrCollectionRepositoryRequired = errors.New("collection repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
