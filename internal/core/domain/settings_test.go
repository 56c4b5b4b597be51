package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		want     bool
	}{
		{AIProviderOllama, true},
		{AIProviderOpenAI, true},
		{AIProviderAnthropic, true},
		{AIProvider("cohere"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	t.Run("openai without key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderOpenAI}
		assert.False(t, s.IsConfigured())
	})

	t.Run("openai with key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}
		assert.True(t, s.IsConfigured())
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderOllama}
		assert.True(t, s.IsConfigured())
	})

	t.Run("anthropic has no embeddings", func(t *testing.T) {
		s := EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "key"}
		assert.False(t, s.IsConfigured())
	})
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderOllama}.IsConfigured())
}

func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"defaults", 1000, 200, false},
		{"no overlap", 10, 0, false},
		{"overlap one less than size", 10, 9, false},
		{"overlap equals size", 10, 10, true},
		{"overlap exceeds size", 10, 20, true},
		{"negative overlap", 10, -1, true},
		{"zero size", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ChunkingSettings{Size: tt.size, Overlap: tt.overlap}.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStorageDriver_IsValid(t *testing.T) {
	assert.True(t, StorageDriverSQLite.IsValid())
	assert.True(t, StorageDriverPostgres.IsValid())
	assert.True(t, StorageDriverMemory.IsValid())
	assert.False(t, StorageDriver("mongo").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, 1000, s.Chunking.Size)
	assert.Equal(t, 200, s.Chunking.Overlap)
	assert.NoError(t, s.Chunking.Validate())
	assert.Equal(t, DefaultTopK, s.Retrieval.TopK)
	assert.Equal(t, 0, s.Retrieval.MaxContextChars)
	assert.Equal(t, StorageDriverSQLite, s.Storage.Driver)
	assert.Equal(t, AuthModeStatic, s.Auth.Mode)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, "gpt-4o", s.LLM.Model)
	assert.Equal(t, 500, s.LLM.MaxTokens)
	assert.False(t, s.Embedding.IsConfigured(), "no API key by default")
}

func TestEmbeddingDimensions_KnownModels(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 768, dims["nomic-embed-text"])
}
