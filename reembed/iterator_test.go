package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *badger.Repositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return repos
}

func chunkTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk number %d.", i)
	}
	return texts
}

func TestChunkIterator_Batches(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	id := core.MaterialID("notes.pdf")
	require.NoError(t, repos.Chunks.ReplaceChunks(ctx, id, chunkTexts(10)))

	tests := []struct {
		batchSize int
		batches   []int
	}{
		{3, []int{3, 3, 3, 1}},
		{5, []int{5, 5}},
		{20, []int{10}},
		{0, []int{10}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("batch size %d", tt.batchSize), func(t *testing.T) {
			var sizes []int
			var ordinals []int
			err := NewChunkIterator(repos.Chunks, id, tt.batchSize).ForEach(ctx, func(batch []*core.Chunk) error {
				sizes = append(sizes, len(batch))
				for _, c := range batch {
					ordinals = append(ordinals, c.Ordinal)
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.batches, sizes)
			for i, o := range ordinals {
				assert.Equal(t, i, o)
			}
		})
	}
}

func TestChunkIterator_Empty(t *testing.T) {
	repos := setupTestDB(t)
	called := false
	err := NewChunkIterator(repos.Chunks, core.MaterialID("missing"), 4).ForEach(context.Background(), func([]*core.Chunk) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestChunkIterator_StopsOnError(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	id := core.MaterialID("notes.pdf")
	require.NoError(t, repos.Chunks.ReplaceChunks(ctx, id, chunkTexts(6)))

	calls := 0
	stop := fmt.Errorf("stop")
	err := NewChunkIterator(repos.Chunks, id, 2).ForEach(ctx, func([]*core.Chunk) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestChunkIterator_ContextCancellation(t *testing.T) {
	repos := setupTestDB(t)
	id := core.MaterialID("notes.pdf")
	require.NoError(t, repos.Chunks.ReplaceChunks(context.Background(), id, chunkTexts(6)))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewChunkIterator(repos.Chunks, id, 2).ForEach(ctx, func([]*core.Chunk) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
