package badger

import (
	"context"
	"testing"

	"github.com/quillstore/quillstore/core"
	"github.com/quillstore/quillstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollection() *core.Collection {
	return &core.Collection{
		DatasetId: "ds-1",
		TeamId:    "team-1",
		MemberId:  "alice",
		Name:      "report.md",
		Type:      core.CollectionTypeFile,
		FileId:    "file-1",
		Metadata:  map[string]string{core.MetaKeyRelatedAsset: "asset-1"},
	}
}

func testChunks(n int) []*core.Chunk {
	chunks := make([]*core.Chunk, n)
	for i := range chunks {
		chunks[i] = &core.Chunk{
			Index:    i,
			Contents: "chunk contents " + string(rune('a'+i)),
			Vector:   []float32{float32(i), float32(i) * 0.5},
		}
	}
	return chunks
}

func TestCollectionRepository_AddAndGet(t *testing.T) {
	_, collectionRepo, _ := setupRepos(t)
	ctx := context.Background()

	added, chunks, err := collectionRepo.AddCollection(ctx, testCollection(), testChunks(3))
	require.NoError(t, err)
	require.NotEmpty(t, added.Id)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		assert.NotZero(t, chunk.Id)
		assert.Equal(t, added.Id, chunk.CollectionId)
	}

	got, err := collectionRepo.GetCollection(ctx, added.Id)
	require.NoError(t, err)
	assert.Equal(t, added.Name, got.Name)
	assert.Equal(t, "asset-1", got.Metadata[core.MetaKeyRelatedAsset])
}

func TestCollectionRepository_ChunksOrderedByIndex(t *testing.T) {
	_, collectionRepo, _ := setupRepos(t)
	ctx := context.Background()

	added, _, err := collectionRepo.AddCollection(ctx, testCollection(), testChunks(5))
	require.NoError(t, err)

	chunks, err := collectionRepo.GetChunks(ctx, added.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 5)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestCollectionRepository_AddInvalidChunkLeavesNothing(t *testing.T) {
	_, collectionRepo, _ := setupRepos(t)
	ctx := context.Background()

	chunks := testChunks(2)
	chunks[1].Contents = ""

	collection := testCollection()
	_, _, err := collectionRepo.AddCollection(ctx, collection, chunks)
	require.ErrorIs(t, err, core.ErrInvalidChunk)

	// Transaction was discarded: the collection must not be visible.
	_, err = collectionRepo.GetCollection(ctx, collection.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCollectionRepository_GetMissing(t *testing.T) {
	_, collectionRepo, _ := setupRepos(t)

	_, err := collectionRepo.GetCollection(context.Background(), "no-such-collection")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCollectionRepository_Delete(t *testing.T) {
	_, collectionRepo, _ := setupRepos(t)
	ctx := context.Background()

	added, _, err := collectionRepo.AddCollection(ctx, testCollection(), testChunks(2))
	require.NoError(t, err)

	require.NoError(t, collectionRepo.DeleteCollection(ctx, added.Id))

	_, err = collectionRepo.GetCollection(ctx, added.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := collectionRepo.GetChunks(ctx, added.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
