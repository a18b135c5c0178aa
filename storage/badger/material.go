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
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/storage"
)

// MaterialRepository implements storage.MaterialRepository using BadgerDB.
type MaterialRepository struct {
	backend *Backend
}

var _ storage.MaterialRepository = (*MaterialRepository)(nil)

// NewMaterialRepository creates a new MaterialRepository.
func NewMaterialRepository(backend *Backend) (*MaterialRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &MaterialRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *MaterialRepository) Close() error {
	return nil
}

// SaveMaterial inserts or replaces a material.
func (r *MaterialRepository) SaveMaterial(ctx context.Context, material *core.Material) (*core.Material, error) {
	if err := core.ValidateMaterial(material); err != nil {
		return nil, err
	}
	if material.Id == 0 {
		material.Id = core.MaterialID(material.Name)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMaterialKey(material.Id)
		old, err := readMaterial(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil && !old.InsertedAt.IsZero() {
			material.InsertedAt = old.InsertedAt
		} else if material.InsertedAt.IsZero() {
			material.InsertedAt = now
		}
		material.UpdatedAt = now

		value, err := storage.MarshalMaterial(material)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return material, nil
}

// GetMaterial retrieves a material by ID.
func (r *MaterialRepository) GetMaterial(ctx context.Context, id core.ID) (*core.Material, error) {
	var result *core.Material
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readMaterial(tx, makeMaterialKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListMaterials returns all materials ordered by name.
func (r *MaterialRepository) ListMaterials(ctx context.Context) ([]*core.Material, error) {
	var results []*core.Material
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(materialPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var material *core.Material
			err := iter.Item().Value(func(val []byte) error {
				var err error
				material, err = storage.UnmarshalMaterial(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, material)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Material) int {
		return strings.Compare(a.Name, b.Name)
	})
	return results, nil
}

// DeleteMaterial removes a material and all of its chunks.
// The material record goes first; its chunks are then removed in a write batch.
func (r *MaterialRepository) DeleteMaterial(ctx context.Context, id core.ID) error {
	var chunkKeys [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeMaterialKey(id)
		material, err := readMaterial(tx, key)
		if err != nil {
			return err
		}
		if material == nil {
			return storage.ErrNotFound
		}
		chunkKeys = chunkKeysFrom(tx, id, 0)
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	return deleteChunkKeys(r.backend, chunkKeys)
}

// readMaterial reads a material from the transaction.
func readMaterial(tx *badger.Txn, key []byte) (*core.Material, error) {
	value, err := getValue(tx, key)
	if err != nil || value == nil {
		return nil, err
	}
	return storage.UnmarshalMaterial(value)
}
