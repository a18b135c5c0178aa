package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/studybot/ai/mock"
	"github.com/poiesic/studybot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunks(texts ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{Ordinal: i, Text: text}
	}
	return chunks
}

func TestBatchProcessor_Process(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	bp := NewBatchProcessor(embedder, 3, time.Millisecond, false)

	vectors, err := bp.Process(context.Background(), testChunks("alpha", "beta"))
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, mock.DeterministicVector("alpha", mock.DefaultDimension), vectors[0])
	assert.Equal(t, mock.DeterministicVector("beta", mock.DefaultDimension), vectors[1])
	assert.Equal(t, 1, embedder.CallCount())
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	vectors, err := NewBatchProcessor(embedder, 3, time.Millisecond, false).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_Retry(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("temporary error")
		}
		return [][]float32{{1, 0, 0}}, nil
	}

	vectors, err := NewBatchProcessor(embedder, 3, time.Millisecond, false).Process(context.Background(), testChunks("x"))
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, [][]float32{{1, 0, 0}}, vectors)
}

func TestBatchProcessor_Errors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedding error")
	}
	_, err := NewBatchProcessor(embedder, 2, time.Millisecond, false).Process(context.Background(), testChunks("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding error")

	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	_, err = NewBatchProcessor(embedder, 1, time.Millisecond, false).Process(context.Background(), testChunks("x", "y"))
	assert.ErrorContains(t, err, "embedding count mismatch")
}

func TestBatchProcessor_Normalize(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}
	vectors, err := NewBatchProcessor(embedder, 1, time.Millisecond, true).Process(context.Background(), testChunks("x"))
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 0.8, vectors[0][1], 1e-6)
}
