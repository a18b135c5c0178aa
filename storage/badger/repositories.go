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
	"errors"

	"github.com/poiesic/studybot/storage"
)

// Repositories groups the repositories sharing one backend.
type Repositories struct {
	Backend   *Backend
	Materials storage.MaterialRepository
	Chunks    storage.ChunkRepository
	Progress  storage.ProgressRepository
}

// OpenRepositories opens a backend and creates every repository on it.
func OpenRepositories(filePath string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	materials, err := NewMaterialRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	progress, err := NewProgressRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:   backend,
		Materials: materials,
		Chunks:    chunks,
		Progress:  progress,
	}, nil
}

// NewMemoryRepositories opens in-memory repositories for tests.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}

// Close closes every repository and then the backend.
func (r *Repositories) Close() error {
	return errors.Join(
		r.Progress.Close(),
		r.Chunks.Close(),
		r.Materials.Close(),
		r.Backend.Close(),
	)
}
