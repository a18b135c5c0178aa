// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/studybot/ai"
)

// embeddingProcessor embeds chunk texts in batches on a shared worker pool.
type embeddingProcessor struct {
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(embedder ai.Embedder, pool *ants.Pool, batchSize int, logger *slog.Logger) (*embeddingProcessor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if pool == nil {
		return nil, fmt.Errorf("worker pool required")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		embedder:  embedder,
		pool:      pool,
		batchSize: batchSize,
		logger:    logger.With("processor", "embeddings"),
	}, nil
}

// process returns one vector per text, in input order.
// The first batch error cancels the remaining batches.
func (ep *embeddingProcessor) process(ctx context.Context, texts []string) ([][]float32, error) {
	ep.logger.Info("embedding chunks", "chunks", len(texts), "batch_size", ep.batchSize)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float32, len(texts))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(texts); start += ep.batchSize {
		end := min(start+ep.batchSize, len(texts))
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := ep.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			batch, err := ep.embedder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				ep.logger.Error("error generating embeddings", "start", start, "end", end, "err", err)
				fail(err)
				return
			}
			if len(batch) != end-start {
				fail(fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, end-start, len(batch)))
				return
			}
			copy(vectors[start:end], batch)
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
