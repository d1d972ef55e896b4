package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.NotEmpty(t, c.EmbeddingHost)
	assert.NotEmpty(t, c.EmbeddingModel)
}

func TestConfigOptions(t *testing.T) {
	c := DefaultConfig(
		WithEmbeddingHost("http://embed.local/v1"),
		WithEmbeddingModel("text-embedding-3-small"),
	)
	assert.Equal(t, "http://embed.local/v1", c.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", c.EmbeddingModel)
}

func TestConfigValidate(t *testing.T) {
	t.Run("empty host", func(t *testing.T) {
		c := &Config{EmbeddingModel: "m"}
		assert.ErrorIs(t, c.Validate(), ErrEmptyEmbeddingHost)
	})

	t.Run("empty model", func(t *testing.T) {
		c := &Config{EmbeddingHost: "http://localhost:11434/v1"}
		assert.ErrorIs(t, c.Validate(), ErrEmptyEmbeddingModel)
	})

	t.Run("normalizes trailing slash", func(t *testing.T) {
		c := &Config{EmbeddingHost: "http://localhost:11434/v1/", EmbeddingModel: " m "}
		require.NoError(t, c.Validate())
		assert.Equal(t, "http://localhost:11434/v1", c.EmbeddingHost)
		assert.Equal(t, "m", c.EmbeddingModel)
	})
}
