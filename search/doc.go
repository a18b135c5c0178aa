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


// Package search retrieves the passages of a study material closest to a question.
//
// The Searcher type implements a two-stage search:
//   - Chunk search: the query vector is matched against the material's chunk index
//   - Sentence search: the best chunks are split into sentences, which are
//     embedded and ranked against the same query vector
//
// Single-stage chunk search is also available. Distances are squared L2;
// lower is closer.
package search
