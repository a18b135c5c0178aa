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

	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to fetch in each batch
	DefaultBatchSize = 100
)

// ChunkIterator walks a material's chunks in ordinal order, one batch at a time.
type ChunkIterator struct {
	repo       storage.ChunkRepository
	materialID core.ID
	batchSize  int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to fetch in each batch (<= 0 uses DefaultBatchSize)
func NewChunkIterator(repo storage.ChunkRepository, materialID core.ID, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{
		repo:       repo,
		materialID: materialID,
		batchSize:  batchSize,
	}
}

// Count returns the number of chunks the iterator will visit.
func (it *ChunkIterator) Count(ctx context.Context) (int, error) {
	return it.repo.CountChunks(ctx, it.materialID)
}

// ForEach calls fn with consecutive ordinal ranges of chunks until all are visited.
// Iteration stops on the first error from fn or on context cancellation.
// Every batch is checked for ordinal gaps so callers can rely on positions.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	total, err := it.Count(ctx)
	if err != nil {
		return err
	}

	for start := 0; start < total; start += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+it.batchSize, total)
		batch, err := it.repo.GetChunkRange(ctx, it.materialID, start, end)
		if err != nil {
			return err
		}
		for i, c := range batch {
			if c.Ordinal != start+i {
				return fmt.Errorf("%w: expected ordinal %d, found %d", ErrOrdinalGap, start+i, c.Ordinal)
			}
		}
		if len(batch) != end-start {
			return fmt.Errorf("%w: expected %d chunks from ordinal %d, found %d", ErrOrdinalGap, end-start, start, len(batch))
		}

		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
