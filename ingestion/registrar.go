package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/quillstore/quillstore/ai"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
	"github.com/tmc/langchaingo/textsplitter"
)

// RegisterParams carries the collection creation parameters of one run.
type RegisterParams struct {
	// Name of the collection; the orchestrator defaults it to the
	// uploaded file's original name.
	Name string

	// Metadata is stored on the collection record. The orchestrator adds
	// the run's asset correlation id under core.MetaKeyRelatedAsset.
	Metadata map[string]string
}

// Registrar creates a collection record and its derived indexable chunks.
// From the pipeline's point of view registration is a single atomic call:
// it either fully succeeds or fails with ErrRegistrationFailed; partial chunk
// sets are never visible.
type Registrar interface {
	Register(ctx context.Context, identity *core.CallerIdentity, rawText, fileID string, params RegisterParams) (*core.CollectionResult, error)
}

// CollectionRegistrar implements Registrar on top of the collection
// repository. Raw text is split into chunks, each chunk is embedded
// concurrently on a worker pool, and the collection plus all chunks are
// written in one storage transaction.
type CollectionRegistrar struct {
	collections  storage.CollectionRepository
	embedder     ai.Embedder
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

var _ Registrar = (*CollectionRegistrar)(nil)

// RegistrarOption configures a CollectionRegistrar.
type RegistrarOption func(*CollectionRegistrar) error

// WithRegistrarPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithRegistrarPoolSize(size int) RegistrarOption {
	return func(r *CollectionRegistrar) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithChunking sets the chunk size and overlap used to split raw text.
// Defaults are 512 and 64.
func WithChunking(size, overlap int) RegistrarOption {
	return func(r *CollectionRegistrar) error {
		if size > 0 {
			r.chunkSize = size
		}
		if overlap >= 0 && overlap < r.chunkSize {
			r.chunkOverlap = overlap
		}
		return nil
	}
}

// WithRegistrarLogger sets a custom logger.
// Default is slog.Default().
func WithRegistrarLogger(logger *slog.Logger) RegistrarOption {
	return func(r *CollectionRegistrar) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewCollectionRegistrar creates a registrar writing to the given repository
// and embedding chunks with the given embedder.
func NewCollectionRegistrar(collections storage.CollectionRepository, embedder ai.Embedder, opts ...RegistrarOption) (*CollectionRegistrar, error) {
	if collections == nil {
		return nil, ErrCollectionRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &CollectionRegistrar{
		collections:  collections,
		embedder:     embedder,
		pool:         pool,
		chunkSize:    512,
		chunkOverlap: 64,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// Register splits, embeds and stores the collection with its chunks.
func (r *CollectionRegistrar) Register(ctx context.Context, identity *core.CallerIdentity, rawText, fileID string, params RegisterParams) (*core.CollectionResult, error) {
	if identity == nil || identity.Dataset == nil {
		return nil, fmt.Errorf("%w: caller identity missing", ErrRegistrationFailed)
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, core.ErrEmptyContent)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(r.chunkSize),
		textsplitter.WithChunkOverlap(r.chunkOverlap),
	)
	pieces, err := splitter.SplitText(rawText)
	if err != nil {
		return nil, fmt.Errorf("%w: splitting text: %w", ErrRegistrationFailed, err)
	}
	if len(pieces) == 0 {
		pieces = []string{rawText}
	}

	r.logger.Debug("embedding chunks", "chunks", len(pieces))

	vectors, err := r.embedPieces(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding chunks: %w", ErrRegistrationFailed, err)
	}

	chunks := make([]*core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &core.Chunk{
			Index:    i,
			Contents: piece,
			Vector:   vectors[i],
		}
	}

	collection := &core.Collection{
		DatasetId: identity.Dataset.Id,
		TeamId:    identity.TeamId,
		MemberId:  identity.MemberId,
		Name:      params.Name,
		Type:      core.CollectionTypeFile,
		FileId:    fileID,
		Metadata:  params.Metadata,
	}

	collection, chunks, err = r.collections.AddCollection(ctx, collection, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	results := make([]core.InsertResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = core.InsertResult{
			ChunkId:       chunk.Id,
			Index:         chunk.Index,
			TokenEstimate: estimateTokens(chunk.Contents),
		}
	}

	r.logger.Info("collection registered",
		"collection", collection.Id, "dataset", collection.DatasetId, "chunks", len(chunks))

	return &core.CollectionResult{
		CollectionId:  collection.Id,
		InsertResults: results,
	}, nil
}

// embedPieces embeds every piece concurrently on the worker pool and returns
// vectors in input order.
func (r *CollectionRegistrar) embedPieces(ctx context.Context, pieces []string) ([][]float32, error) {
	vectors := make([][]float32, len(pieces))
	errs := make([]error, len(pieces))

	var wg sync.WaitGroup
	for i, piece := range pieces {
		wg.Add(1)
		i, piece := i, piece
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			vectors[i], errs[i] = r.embedder.EmbedText(ctx, piece)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

// Release releases the worker pool.
// The registrar should not be used after calling Release.
func (r *CollectionRegistrar) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// estimateTokens is a rough character-based token estimate.
func estimateTokens(text string) int {
	estimate := len(text) / 4
	if estimate < 1 {
		estimate = 1
	}
	return estimate
}
