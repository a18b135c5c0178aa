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


// Package storage provides the storage abstraction layer for studybot.
//
// This package defines repository interfaces that decouple storage implementation
// from business logic:
//
//   - MaterialRepository: indexed study documents
//   - ChunkRepository: the ordered chunk list behind each material's vector index
//   - ProgressRepository: the question and quiz log behind progress statistics
//
// Two backends are provided. storage/badger keeps everything in one BadgerDB
// directory and is the default. storage/sqlite implements ProgressRepository on
// a SQLite file with qa_log and quiz_log tables, for users who want to inspect
// their history with ordinary SQL tools.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	materials, err := badger.NewMaterialRepository(backend)
//	chunks, err := badger.NewChunkRepository(backend)
//	progress, err := badger.NewProgressRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	defer repos.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Serialization
//
// Records are stored as JSON values. IDs used inside composite keys are
// encoded big-endian so that lexicographic key order matches numeric order.
package storage
