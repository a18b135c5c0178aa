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


package answer

import "errors"

var (
	// ErrGeneratorRequired is returned when a text generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyGeneration is returned when the model produced no usable text.
	ErrEmptyGeneration = errors.New("model returned an empty generation")

	// ErrTooManyOptions is returned when an MCQ asks for more options than letters.
	ErrTooManyOptions = errors.New("too many MCQ options")
)
