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


// Package ai provides abstractions for the model services studybot depends on.
//
// The package defines three interfaces:
//
//   - Embedder: turns chunks, sentences and queries into vectors
//   - Generator: runs a prompt through a language model
//   - AIProvider: aggregates both for initialization and shutdown
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, openai.NewGenerator)
// return interface types. Mock constructors (mock.NewMockEmbedder,
// mock.NewMockGenerator) return concrete types so tests can inject behavior and
// read call counts. mock.NewMockProvider returns ai.AIProvider; use
// GetMockEmbedder/GetMockGenerator to reach the concrete mocks.
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "What is osmosis?")
//	text, err := provider.Generator().Generate(ctx, prompt, ai.StudyDecoding(220, 80))
package ai
