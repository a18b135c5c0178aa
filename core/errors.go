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

import "errors"

// Domain validation errors
var (
	// ErrNotReady indicates no index and chunk list have been built or loaded yet.
	ErrNotReady = errors.New("index/chunks not ready: build from a PDF or load from cache first")

	// ErrInvalidChunkParams indicates chunk size or overlap are out of range.
	ErrInvalidChunkParams = errors.New("invalid chunk parameters")

	// ErrInvalidMaterial indicates a Material failed validation.
	ErrInvalidMaterial = errors.New("invalid material")

	// ErrInvalidRecord indicates a QARecord or QuizRecord failed validation.
	ErrInvalidRecord = errors.New("invalid progress record")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyName indicates the material Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyStudentID indicates the StudentId field is empty.
	ErrEmptyStudentID = errors.New("student id cannot be empty")

	// ErrEmptyQuestion indicates the Question field is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")
)
