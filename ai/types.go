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


package ai

// GenerateOptions are decoding parameters for a single generation call.
// Lengths are measured in tokens.
type GenerateOptions struct {
	MaxLength         int
	MinLength         int
	Temperature       float64
	TopP              float64
	TopK              int
	RepetitionPenalty float64

	// Sample enables stochastic decoding. When false, callers expect
	// greedy output and Temperature is ignored by backends that honor it.
	Sample bool
}

// StudyDecoding returns the sampling parameters used for study answers:
// temperature 0.7, top-p 0.9, top-k 50, repetition penalty 2.0.
func StudyDecoding(maxLength, minLength int) GenerateOptions {
	return GenerateOptions{
		MaxLength:         maxLength,
		MinLength:         minLength,
		Temperature:       0.7,
		TopP:              0.9,
		TopK:              50,
		RepetitionPenalty: 2.0,
		Sample:            true,
	}
}
