package ingestion

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchStore_Acquire(t *testing.T) {
	store, err := NewScratchStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	artifact, err := store.Acquire(context.Background(),
		strings.NewReader("hello world"), "notes.txt", "text/plain", "utf-8", "dataset")
	require.NoError(t, err)

	assert.Equal(t, "notes.txt", artifact.OriginalName)
	assert.Equal(t, int64(11), artifact.Size)

	data, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestScratchStore_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewScratchStore(dir, 4, nil)
	require.NoError(t, err)

	_, err = store.Acquire(context.Background(),
		strings.NewReader("too many bytes"), "big.txt", "text/plain", "utf-8", "dataset")
	assert.ErrorIs(t, err, ErrSizeLimitExceeded)

	// the partial file must not be left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScratchStore_AtLimitSucceeds(t *testing.T) {
	store, err := NewScratchStore(t.TempDir(), 4, nil)
	require.NoError(t, err)

	artifact, err := store.Acquire(context.Background(),
		strings.NewReader("abcd"), "exact.txt", "text/plain", "utf-8", "dataset")
	require.NoError(t, err)
	assert.Equal(t, int64(4), artifact.Size)
}

func TestScratchStore_EmptyUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewScratchStore(dir, 0, nil)
	require.NoError(t, err)

	_, err = store.Acquire(context.Background(),
		strings.NewReader(""), "empty.txt", "text/plain", "utf-8", "dataset")
	assert.ErrorIs(t, err, ErrEmptyFile)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScratchStore_UniqueNames(t *testing.T) {
	store, err := NewScratchStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	first, err := store.Acquire(context.Background(),
		strings.NewReader("a"), "same.txt", "text/plain", "utf-8", "dataset")
	require.NoError(t, err)
	second, err := store.Acquire(context.Background(),
		strings.NewReader("b"), "same.txt", "text/plain", "utf-8", "dataset")
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
}

func TestScratchStore_ReleaseFilesIdempotent(t *testing.T) {
	store, err := NewScratchStore(t.TempDir(), 0, nil)
	require.NoError(t, err)

	artifact, err := store.Acquire(context.Background(),
		strings.NewReader("bytes"), "a.txt", "text/plain", "utf-8", "dataset")
	require.NoError(t, err)

	store.ReleaseFiles(artifact.Path)
	assert.NoFileExists(t, artifact.Path)

	// releasing again, or releasing nothing, is a no-op
	store.ReleaseFiles(artifact.Path)
	store.ReleaseFiles("")
}
