package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
)

// BatchProcessor embeds batches of chunks.
type BatchProcessor struct {
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	normalize      bool
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for each embedding call
// retryBaseDelay: base delay for exponential backoff
// normalize: scale every vector to unit length
func NewBatchProcessor(embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, normalize bool) *BatchProcessor {
	return &BatchProcessor{
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		normalize:      normalize,
	}
}

// Process returns one vector per chunk, in chunk order.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks %d-%d failed after %d attempts: %w",
			chunks[0].Ordinal, chunks[len(chunks)-1].Ordinal, bp.maxRetries, err)
	}

	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	if bp.normalize {
		for i := range vectors {
			vectors[i] = NormalizeVector(vectors[i])
		}
	}
	return vectors, nil
}
