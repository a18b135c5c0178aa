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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateChunkParams checks that size is positive and 0 <= overlap < size.
func ValidateChunkParams(p ChunkParams) error {
	if p.Size <= 0 {
		return fmt.Errorf("%w: size %d must be positive", ErrInvalidChunkParams, p.Size)
	}
	if p.Overlap < 0 || p.Overlap >= p.Size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunkParams, p.Overlap, p.Size)
	}
	return nil
}

// ValidateMaterial validates a Material according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - ChunkSize/Overlap must form valid ChunkParams
//
// NOT validated (populated by the build pipeline):
//   - Dimension, ChunkCount, EmbeddingModel
func ValidateMaterial(m *Material) error {
	if m == nil {
		return fmt.Errorf("%w: material is nil", ErrInvalidMaterial)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMaterial, ErrEmptyName)
	}
	if err := ValidateChunkParams(ChunkParams{Size: m.ChunkSize, Overlap: m.Overlap}); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMaterial, err)
	}
	return nil
}

// ValidateQARecord validates a QARecord.
// The answer may be empty; the student, question and timestamp may not.
func ValidateQARecord(r *QARecord) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	return validateLogEntry(r.StudentId, r.Question, r.Timestamp)
}

// ValidateQuizRecord validates a QuizRecord.
func ValidateQuizRecord(r *QuizRecord) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	return validateLogEntry(r.StudentId, r.Question, r.Timestamp)
}

func validateLogEntry(studentID, question string, ts time.Time) error {
	if studentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyStudentID)
	}
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyQuestion)
	}
	if !IsValidTimestamp(ts) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
