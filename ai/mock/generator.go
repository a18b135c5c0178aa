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


package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/poiesic/studybot/ai"
)

// GenerateCall records one Generate invocation.
type GenerateCall struct {
	Prompt  string
	Options ai.GenerateOptions
}

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns a deterministic bullet derived from the prompt.
	GenerateFunc func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error)

	mu    sync.Mutex
	calls []GenerateCall
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the call and returns the injected or default output.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCall{Prompt: prompt, Options: opts})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}

	h := fnv.New32a()
	h.Write([]byte(prompt))
	return fmt.Sprintf("- generated answer %08x", h.Sum32()), nil
}

// CallCount returns the number of Generate calls.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls in order.
func (m *MockGenerator) Calls() []GenerateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCall(nil), m.calls...)
}

// LastCall returns the most recent call, or false if none was made.
func (m *MockGenerator) LastCall() (GenerateCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return GenerateCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// Reset clears recorded calls and any injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.GenerateFunc = nil
}
