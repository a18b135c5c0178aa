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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/index"
	"github.com/poiesic/studybot/storage"
)

// Config holds configuration for a reindex run.
type Config struct {
	// BatchSize is the number of chunks embedded per request
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding request
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Normalize scales vectors to unit length before indexing
	Normalize bool

	// EmbeddingModel is recorded on the material after a successful run
	EmbeddingModel string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// IndexPathFunc maps a material to the file holding its index snapshot.
type IndexPathFunc func(id core.ID) string

// Reindexer re-embeds a stored material's chunks and replaces its index snapshot.
type Reindexer struct {
	materials storage.MaterialRepository
	chunks    storage.ChunkRepository
	config    *Config
	indexPath IndexPathFunc
	progress  io.Writer
	processor *BatchProcessor
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(
	materials storage.MaterialRepository,
	chunks storage.ChunkRepository,
	embedder ai.Embedder,
	indexPath IndexPathFunc,
	config *Config,
	progress io.Writer,
) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Reindexer{
		materials: materials,
		chunks:    chunks,
		config:    config,
		indexPath: indexPath,
		progress:  progress,
		processor: NewBatchProcessor(embedder, config.MaxRetries, config.RetryDelay, config.Normalize),
	}
}

// Run rebuilds the index of the named material. The existing snapshot is
// replaced only after every chunk has been embedded, and the material record
// is updated with the new dimension and model.
func (r *Reindexer) Run(ctx context.Context, materialName string) (*core.Material, error) {
	material, err := r.materials.GetMaterial(ctx, core.MaterialID(materialName))
	if err != nil {
		return nil, fmt.Errorf("loading material %q: %w", materialName, err)
	}

	iter := NewChunkIterator(r.chunks, material.Id, r.config.BatchSize)
	total, err := iter.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, materialName)
	}

	fmt.Fprintf(r.progress, "Reindexing %s: %d chunks (batch size: %d)\n", materialName, total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, materialName, total, r.config.ReportInterval)
	tracker.Start()

	var idx *index.Flat
	err = iter.ForEach(ctx, func(batch []*core.Chunk) error {
		vectors, err := r.processor.Process(ctx, batch)
		if err != nil {
			return err
		}
		if idx == nil {
			if idx, err = index.NewFlat(len(vectors[0])); err != nil {
				return err
			}
		}
		if err := idx.Add(vectors...); err != nil {
			return fmt.Errorf("indexing chunks from ordinal %d: %w", batch[0].Ordinal, err)
		}
		tracker.Add(len(batch))
		return nil
	})
	if err != nil {
		return nil, err
	}
	tracker.Finish()

	if err := idx.SaveToFile(r.indexPath(material.Id)); err != nil {
		return nil, fmt.Errorf("saving index: %w", err)
	}

	material.Dimension = idx.Dimension()
	material.ChunkCount = idx.Len()
	if r.config.EmbeddingModel != "" {
		material.EmbeddingModel = r.config.EmbeddingModel
	}
	saved, err := r.materials.SaveMaterial(ctx, material)
	if err != nil {
		return nil, fmt.Errorf("updating material: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Embedded %d chunks in %v (%.1f chunks/sec)\n",
		total, elapsed.Round(time.Millisecond), float64(total)/max(elapsed.Seconds(), 1e-9))
	return saved, nil
}
