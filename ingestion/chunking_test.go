package ingestion

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/studybot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText_Windows(t *testing.T) {
	chunks, err := ChunkText(numberedWords(10), 4, 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
		"w9",
	}, chunks)
}

func TestChunkText_NormalizesWhitespace(t *testing.T) {
	chunks, err := ChunkText("  alpha\n\nbeta\tgamma   delta ", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha beta gamma", "delta"}, chunks)
}

func TestChunkText_Empty(t *testing.T) {
	chunks, err := ChunkText(" \n\t ", 200, 30)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkText_InvalidParams(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 5, -1},
		{"overlap equals size", 5, 5},
		{"overlap exceeds size", 5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChunkText("some words here", tt.size, tt.overlap)
			assert.ErrorIs(t, err, core.ErrInvalidChunkParams)
		})
	}
}

// Every word position must land in at least one window, and consecutive
// full windows must share exactly overlap words.
func TestChunkText_Coverage(t *testing.T) {
	cases := []struct{ words, size, overlap int }{
		{1, 200, 30},
		{199, 200, 30},
		{200, 200, 30},
		{201, 200, 30},
		{1234, 400, 50},
		{5000, 600, 100},
		{17, 3, 2},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%d_%d_%d", c.words, c.size, c.overlap), func(t *testing.T) {
			chunks, err := ChunkText(numberedWords(c.words), c.size, c.overlap)
			require.NoError(t, err)

			covered := make([]bool, c.words)
			step := c.size - c.overlap
			for i, chunk := range chunks {
				words := strings.Fields(chunk)
				assert.LessOrEqual(t, len(words), c.size)
				for j := range words {
					assert.Equal(t, fmt.Sprintf("w%d", i*step+j), words[j])
					covered[i*step+j] = true
				}
				if i > 0 && i*step+c.size <= c.words {
					prev := strings.Fields(chunks[i-1])
					assert.Equal(t, prev[len(prev)-c.overlap:], words[:c.overlap])
				}
			}
			for pos, ok := range covered {
				assert.True(t, ok, "word %d not covered", pos)
			}
		})
	}
}

func TestAdaptiveParams(t *testing.T) {
	tests := []struct {
		pages int
		want  core.ChunkParams
	}{
		{0, core.ChunkParams{Size: 200, Overlap: 30}},
		{1, core.ChunkParams{Size: 200, Overlap: 30}},
		{5, core.ChunkParams{Size: 200, Overlap: 30}},
		{6, core.ChunkParams{Size: 400, Overlap: 50}},
		{30, core.ChunkParams{Size: 400, Overlap: 50}},
		{31, core.ChunkParams{Size: 600, Overlap: 100}},
		{500, core.ChunkParams{Size: 600, Overlap: 100}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdaptiveParams(tt.pages), "pages=%d", tt.pages)
	}
}

func TestAdaptiveChunking(t *testing.T) {
	chunks, params, err := AdaptiveChunking(numberedWords(450), 3)
	require.NoError(t, err)
	assert.Equal(t, 200, params.Size)
	// starts at 0, 170, 340
	assert.Len(t, chunks, 3)

	chunks, params, err = AdaptiveChunking(numberedWords(450), 12)
	require.NoError(t, err)
	assert.Equal(t, 400, params.Size)
	// starts at 0, 350
	assert.Len(t, chunks, 2)
}
