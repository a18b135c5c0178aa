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
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkParams controls word-window chunking. Both values count words.
type ChunkParams struct {
	Size    int
	Overlap int
}

// Step is the distance in words between the starts of consecutive windows.
func (p ChunkParams) Step() int {
	return p.Size - p.Overlap
}

// Material is a study document that has been extracted, chunked and indexed.
// Materials are keyed by name; rebuilding a name replaces the previous material.
type Material struct {
	Id             ID
	Name           string
	SourcePath     string
	Pages          int
	ChunkSize      int
	Overlap        int
	Dimension      int
	ChunkCount     int
	EmbeddingModel string
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// MaterialID returns the ID used for a material with the given name.
func MaterialID(name string) ID {
	return IDFromContent(name)
}

// Chunk is one window of a material's text.
// Ordinal matches the position of the chunk's vector in the material's index.
type Chunk struct {
	MaterialId ID
	Ordinal    int
	Text       string
}

// QARecord is one logged question and its answer.
type QARecord struct {
	Id        ID
	StudentId string
	Question  string
	Answer    string
	Timestamp time.Time
}

// QuizRecord is one logged quiz attempt.
// Question holds the quiz topic; Correct stays false until the attempt is graded.
type QuizRecord struct {
	Id        ID
	StudentId string
	Question  string
	Correct   bool
	Timestamp time.Time
}

// Progress summarizes a student's activity.
type Progress struct {
	StudentId   string
	TotalQA     int
	TotalQuiz   int
	CorrectQuiz int
	// Accuracy is the percentage of correct quiz attempts, rounded to 2 decimals.
	Accuracy float64
}

// MCQ is a parsed multiple choice question.
type MCQ struct {
	Raw      string
	Question string
	Options  []string
	Correct  string
}

// ShortQuestion is a parsed short answer question.
type ShortQuestion struct {
	Raw      string
	Question string
	Answer   string
}

// Quiz bundles the questions generated for one topic.
type Quiz struct {
	Topic     string
	AttemptId ID
	MCQ       MCQ
	Short     ShortQuestion
}

// ChunkMatch is a chunk returned from nearest-neighbor search.
// Distance is the squared L2 distance to the query; lower is closer.
type ChunkMatch struct {
	Chunk    Chunk
	Distance float32
}

// SentenceMatch is a sentence returned from two-stage search.
type SentenceMatch struct {
	Text     string
	Distance float32
}
