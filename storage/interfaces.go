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


package storage

import (
	"context"

	"github.com/poiesic/studybot/core"
)

type Repository interface {
	// Close releases resources held by the repository.
	// It does not close a shared backend.
	Close() error
}

type MaterialRepository interface {
	Repository
	// SaveMaterial inserts or replaces a material keyed by its ID.
	// Sets InsertedAt on first save and UpdatedAt on every save.
	SaveMaterial(ctx context.Context, material *core.Material) (*core.Material, error)

	// GetMaterial retrieves a material by ID.
	// Returns ErrNotFound if the material doesn't exist.
	GetMaterial(ctx context.Context, id core.ID) (*core.Material, error)

	// ListMaterials returns all materials ordered by name.
	ListMaterials(ctx context.Context) ([]*core.Material, error)

	// DeleteMaterial removes a material and all of its chunks.
	// Returns ErrNotFound if the material doesn't exist.
	DeleteMaterial(ctx context.Context, id core.ID) error
}

type ChunkRepository interface {
	Repository
	// ReplaceChunks removes every chunk of the material and stores the given texts
	// with ordinals 0..len(texts)-1.
	ReplaceChunks(ctx context.Context, materialID core.ID, texts []string) error

	// GetChunks returns all chunks of a material ordered by ordinal.
	GetChunks(ctx context.Context, materialID core.ID) ([]*core.Chunk, error)

	// GetChunkRange returns chunks with start <= Ordinal < end ordered by ordinal.
	GetChunkRange(ctx context.Context, materialID core.ID, start, end int) ([]*core.Chunk, error)

	// CountChunks returns the number of chunks stored for a material.
	CountChunks(ctx context.Context, materialID core.ID) (int, error)
}

type ProgressRepository interface {
	Repository
	// LogQA records a question and answer.
	// Assigns a new ID and sets Timestamp if not already set.
	LogQA(ctx context.Context, record *core.QARecord) (*core.QARecord, error)

	// LogQuiz records a quiz attempt.
	// Assigns a new ID and sets Timestamp if not already set.
	LogQuiz(ctx context.Context, record *core.QuizRecord) (*core.QuizRecord, error)

	// UpdateQuizResult sets the Correct flag of a logged attempt.
	// Returns ErrNotFound if the attempt doesn't exist.
	UpdateQuizResult(ctx context.Context, id core.ID, correct bool) error

	// CountQA returns the number of logged questions for a student.
	CountQA(ctx context.Context, studentID string) (int, error)

	// QuizStats returns the number of attempts and correct attempts for a student.
	QuizStats(ctx context.Context, studentID string) (total int, correct int, err error)

	// RecentQA returns up to limit logged questions for a student, newest first.
	RecentQA(ctx context.Context, studentID string, limit int) ([]*core.QARecord, error)
}
