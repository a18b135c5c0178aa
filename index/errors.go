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


package index

import "errors"

var (
	// ErrInvalidDimension is returned when an index is created with dimension <= 0.
	ErrInvalidDimension = errors.New("index dimension must be positive")

	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyIndex is returned when building an index from no vectors.
	ErrEmptyIndex = errors.New("no vectors to index")

	// ErrOrdinalOutOfRange is returned when reading a vector that does not exist.
	ErrOrdinalOutOfRange = errors.New("ordinal out of range")

	// ErrCorruptIndex is returned when a snapshot cannot be decoded.
	ErrCorruptIndex = errors.New("corrupt index snapshot")
)
