package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, int64(100), config.Gmail.MaxResults)
	assert.Equal(t, 100*time.Millisecond, config.Gmail.RateLimitDelay)

	assert.Equal(t, "", config.Search.Query)
	assert.Equal(t, int64(50), config.Search.MaxResults)
	assert.False(t, config.Search.UnreadOnly)

	assert.Equal(t, "openai", config.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", config.Embedding.Model)
	assert.Equal(t, 1536, config.Embedding.Dimensions)

	assert.Equal(t, "http://localhost:6334", config.Qdrant.URL)
	assert.Equal(t, "newsletter_articles", config.Qdrant.Collection)

	assert.True(t, config.Pipeline.SkipExisting)
	assert.False(t, config.Pipeline.MarkRead)
	assert.Equal(t, 5, config.Pipeline.TopK)

	assert.Equal(t, "0.0.0.0:8080", config.Server.Addr())
	assert.Equal(t, 30*time.Second, config.Server.ShutdownTimeout)

	assert.Equal(t, "@every 20m", config.Poll.Schedule)
}

func TestLoadPrefixedEnvOverrides(t *testing.T) {
	t.Setenv("NEWSRAG_QDRANT_URL", "https://qdrant.internal.example:6334")
	t.Setenv("NEWSRAG_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("NEWSRAG_SERVER_PORT", "9090")
	t.Setenv("NEWSRAG_SEARCH_UNREAD_ONLY", "true")

	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "https://qdrant.internal.example:6334", config.Qdrant.URL)
	assert.Equal(t, "text-embedding-3-large", config.Embedding.Model)
	assert.Equal(t, "9090", config.Server.Port)
	assert.True(t, config.Search.UnreadOnly)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QDRANT_URL", "http://qdrant:6334")
	t.Setenv("QDRANT_COLLECTION", "custom_articles")
	t.Setenv("PORT", "3000")

	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", config.Embedding.APIKey)
	assert.Equal(t, "http://qdrant:6334", config.Qdrant.URL)
	assert.Equal(t, "custom_articles", config.Qdrant.Collection)
	assert.Equal(t, "3000", config.Server.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Unknown embedding provider", key: "NEWSRAG_EMBEDDING_PROVIDER", value: "llama"},
		{name: "Zero dimensions", key: "NEWSRAG_EMBEDDING_DIMENSIONS", value: "0"},
		{name: "Negative top_k", key: "NEWSRAG_PIPELINE_TOP_K", value: "-1"},
		{name: "Bad rate limit delay", key: "NEWSRAG_GMAIL_RATE_LIMIT_DELAY", value: "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadWithViper(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestConfigConversions(t *testing.T) {
	config, err := LoadWithViper(viper.New())
	require.NoError(t, err)

	gmail := config.GmailClientConfig()
	assert.Equal(t, config.Gmail.MaxResults, gmail.MaxResults)

	embedder := config.EmbedderConfig()
	assert.Equal(t, config.Embedding.Model, embedder.Model)
	assert.Equal(t, config.Embedding.Dimensions, embedder.Dimensions)

	store := config.VectorStoreConfig()
	assert.Equal(t, config.Qdrant.URL, store.URL)
	assert.Equal(t, config.Qdrant.Collection, store.Collection)
}
