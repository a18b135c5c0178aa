package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.GenerationModel)
	assert.Equal(t, 32, cfg.EmbeddingBatchSize)
	assert.Zero(t, cfg.RequestsPerSecond)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.GenerationHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithGenerationHost("http://generate:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://generate:9090/v1", cfg.GenerationHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("text-embedding-3-small"),
			WithGenerationModel("gpt-4o-mini"),
			WithToken("sk-test"),
			WithRequestsPerSecond(2.5),
			WithEmbeddingBatchSize(8),
		)

		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.GenerationModel)
		assert.Equal(t, "sk-test", cfg.Token)
		assert.Equal(t, 2.5, cfg.RequestsPerSecond)
		assert.Equal(t, 8, cfg.EmbeddingBatchSize)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name               string
		embeddingHost      string
		generationHost     string
		expectedEmbedding  string
		expectedGeneration string
	}{
		{
			name:               "already has /v1",
			embeddingHost:      "http://localhost:11434/v1",
			generationHost:     "http://localhost:11434/v1",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedGeneration: "http://localhost:11434/v1",
		},
		{
			name:               "missing /v1",
			embeddingHost:      "http://localhost:11434",
			generationHost:     "http://localhost:11434",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedGeneration: "http://localhost:11434/v1",
		},
		{
			name:               "has trailing slash",
			embeddingHost:      "http://localhost:11434/",
			generationHost:     "http://localhost:11434/",
			expectedEmbedding:  "http://localhost:11434/v1",
			expectedGeneration: "http://localhost:11434/v1",
		},
		{
			name: "empty hosts",
		},
		{
			name:               "different formats",
			embeddingHost:      "http://embed:8080",
			generationHost:     "http://generate:9090/v1",
			expectedEmbedding:  "http://embed:8080/v1",
			expectedGeneration: "http://generate:9090/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost:  tt.embeddingHost,
				GenerationHost: tt.generationHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedGeneration, cfg.GenerationHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EmbeddingHost:      "http://localhost:11434",
			GenerationHost:     "http://localhost:11434",
			EmbeddingModel:     "all-minilm",
			GenerationModel:    "qwen2.5:3b",
			EmbeddingBatchSize: 16,
		}
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := valid()

		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.GenerationHost)
	})

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing generation host", func(c *Config) { c.GenerationHost = "" }, "GenerationHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing generation model", func(c *Config) { c.GenerationModel = "" }, "GenerationModel"},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, "RequestsPerSecond"},
		{"zero batch size", func(c *Config) { c.EmbeddingBatchSize = 0 }, "EmbeddingBatchSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestStudyDecoding(t *testing.T) {
	opts := StudyDecoding(220, 80)

	assert.Equal(t, 220, opts.MaxLength)
	assert.Equal(t, 80, opts.MinLength)
	assert.Equal(t, 0.7, opts.Temperature)
	assert.Equal(t, 0.9, opts.TopP)
	assert.Equal(t, 50, opts.TopK)
	assert.Equal(t, 2.0, opts.RepetitionPenalty)
	assert.True(t, opts.Sample)
}
