package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/studybot/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	a, err := m.EmbedText(ctx, "photosynthesis")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "photosynthesis")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "mitochondria")
	require.NoError(t, err)

	assert.Len(t, a, DefaultDimension)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	batch, err := m.EmbedTexts(ctx, []string{"photosynthesis", "mitochondria"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{a, c}, batch)

	assert.Equal(t, 4, m.CallCount())
	assert.Equal(t, 5, m.TextCount())

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Zero(t, m.TextCount())
}

func TestMockEmbedder_Inject(t *testing.T) {
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, boom
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, boom)
}

func TestMockEmbedder_Concurrent(t *testing.T) {
	m := NewMockEmbedder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedTexts(context.Background(), []string{"a", "b"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, m.CallCount())
	assert.Equal(t, 16, m.TextCount())
}

func TestMockGenerator(t *testing.T) {
	g := NewMockGenerator()
	ctx := context.Background()

	out1, err := g.Generate(ctx, "prompt one", ai.StudyDecoding(200, 60))
	require.NoError(t, err)
	out2, err := g.Generate(ctx, "prompt one", ai.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
	assert.Contains(t, out1, "- generated answer")

	last, ok := g.LastCall()
	require.True(t, ok)
	assert.Equal(t, "prompt one", last.Prompt)
	assert.False(t, last.Options.Sample)
	assert.Len(t, g.Calls(), 2)

	g.GenerateFunc = func(context.Context, string, ai.GenerateOptions) (string, error) {
		return "custom", nil
	}
	out, err := g.Generate(ctx, "x", ai.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "custom", out)

	g.Reset()
	assert.Zero(t, g.CallCount())
	_, ok = g.LastCall()
	assert.False(t, ok)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	mp := p.(*MockProvider)

	assert.Same(t, mp.GetMockEmbedder(), p.Embedder())
	assert.Same(t, mp.GetMockGenerator(), p.Generator())

	require.NoError(t, p.Close())
	assert.True(t, mp.Closed())
}
