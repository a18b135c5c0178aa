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


package badger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
)

// ChunkRepository implements storage.ChunkRepository using BadgerDB.
// Chunks are keyed by (material, ordinal) so a prefix scan returns them in index order.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *ChunkRepository) Close() error {
	return nil
}

// ReplaceChunks removes every chunk of the material and stores texts with dense ordinals.
// Writes go through a WriteBatch so large materials are not bound by transaction size.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, materialID core.ID, texts []string) error {
	var stale [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		stale = chunkKeysFrom(tx, materialID, len(texts))
		return nil
	}, false)
	if err != nil {
		return err
	}

	if err := deleteChunkKeys(r.backend, stale); err != nil {
		return err
	}
	return r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			chunk := &core.Chunk{MaterialId: materialID, Ordinal: i, Text: text}
			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := wb.Set(makeChunkKey(materialID, i), value); err != nil {
				return fmt.Errorf("storing chunk %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetChunks returns all chunks of a material ordered by ordinal.
func (r *ChunkRepository) GetChunks(ctx context.Context, materialID core.ID) ([]*core.Chunk, error) {
	return r.scan(ctx, materialID, 0, -1)
}

// GetChunkRange returns chunks with start <= Ordinal < end.
func (r *ChunkRepository) GetChunkRange(ctx context.Context, materialID core.ID, start, end int) ([]*core.Chunk, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: range [%d, %d)", storage.ErrInvalidQuery, start, end)
	}
	return r.scan(ctx, materialID, start, end)
}

// CountChunks returns the number of chunks stored for a material.
func (r *ChunkRepository) CountChunks(ctx context.Context, materialID core.ID) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(materialID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// scan reads chunks in ordinal order starting at start. A negative end means no upper bound.
func (r *ChunkRepository) scan(ctx context.Context, materialID core.ID, start, end int) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(materialID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		endKey := makeChunkKey(materialID, end)
		for iter.Seek(makeChunkKey(materialID, start)); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if end >= 0 && bytes.Compare(iter.Item().Key(), endKey) >= 0 {
				break
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	return results, err
}

// chunkKeysFrom lists the chunk keys of a material with Ordinal >= from.
func chunkKeysFrom(tx *badger.Txn, materialID core.ID, from int) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkKey(materialID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Seek(makeChunkKey(materialID, from)); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys
}

// deleteChunkKeys removes keys through a write batch.
func deleteChunkKeys(backend *Backend, keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	return backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, key := range keys {
			if err := wb.Delete(key); err != nil {
				return fmt.Errorf("deleting chunk: %w", err)
			}
		}
		return nil
	})
}
