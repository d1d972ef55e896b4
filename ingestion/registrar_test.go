package ingestion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quillstore/ai/mock"
	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
	"github.com/quillstore/quillstore/storage/badger"
)

func setupRegistrar(t *testing.T, embedder *mock.MockEmbedder, opts ...RegistrarOption) (*CollectionRegistrar, storage.CollectionRepository) {
	t.Helper()

	_, collections, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	registrar, err := NewCollectionRegistrar(collections, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(registrar.Release)

	return registrar, collections
}

func testIdentity() *core.CallerIdentity {
	return &core.CallerIdentity{
		TeamId:   "team-1",
		MemberId: "member-1",
		Dataset:  &core.Dataset{Id: "ds-1", TeamId: "team-1"},
	}
}

func TestRegister_CreatesCollectionAndChunks(t *testing.T) {
	registrar, collections := setupRegistrar(t, mock.NewMockEmbedder(), WithChunking(64, 8))

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	result, err := registrar.Register(context.Background(), testIdentity(), text, "file-1",
		RegisterParams{Name: "foxes.txt", Metadata: map[string]string{"k": "v"}})
	require.NoError(t, err)

	require.NotEmpty(t, result.CollectionId)
	require.NotEmpty(t, result.InsertResults)

	collection, err := collections.GetCollection(context.Background(), result.CollectionId)
	require.NoError(t, err)
	assert.Equal(t, "foxes.txt", collection.Name)
	assert.Equal(t, "file-1", collection.FileId)
	assert.Equal(t, core.CollectionTypeFile, collection.Type)
	assert.Equal(t, "v", collection.Metadata["k"])

	chunks, err := collections.GetChunks(context.Background(), result.CollectionId)
	require.NoError(t, err)
	require.Len(t, chunks, len(result.InsertResults))
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.NotEmpty(t, chunk.Contents)
		assert.NotEmpty(t, chunk.Vector)
		assert.Equal(t, chunk.Id, result.InsertResults[i].ChunkId)
		assert.Positive(t, result.InsertResults[i].TokenEstimate)
	}
}

func TestRegister_EmptyText(t *testing.T) {
	registrar, _ := setupRegistrar(t, mock.NewMockEmbedder())

	_, err := registrar.Register(context.Background(), testIdentity(), "   \n\t", "file-1",
		RegisterParams{Name: "empty.txt"})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestRegister_EmbeddingFailureLeavesNothing(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding backend down")
	}
	registrar, collections := setupRegistrar(t, embedder, WithChunking(32, 0))

	_, err := registrar.Register(context.Background(), testIdentity(),
		strings.Repeat("words words words ", 10), "file-1", RegisterParams{Name: "n"})
	assert.ErrorIs(t, err, ErrRegistrationFailed)

	// nothing may be visible after a failed registration
	chunks, err := collections.GetChunks(context.Background(), "any")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestRegister_MissingIdentity(t *testing.T) {
	registrar, _ := setupRegistrar(t, mock.NewMockEmbedder())

	_, err := registrar.Register(context.Background(), nil, "text", "file-1", RegisterParams{})
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestNewCollectionRegistrar_MissingDependencies(t *testing.T) {
	_, collections, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = NewCollectionRegistrar(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrCollectionRepositoryRequired)

	_, err = NewCollectionRegistrar(collections, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
