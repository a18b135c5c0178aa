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

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/studybot/ai"
)

const (
	// SummarizeThreshold is the context length in characters above which
	// RefineAnswer summarizes before answering.
	SummarizeThreshold = 1200

	// MaxSummaryInput is the number of characters of context passed to the summarizer.
	MaxSummaryInput = 3000
)

var (
	summaryDecoding = ai.StudyDecoding(200, 60)
	refineDecoding  = ai.StudyDecoding(220, 80)
	ragDecoding     = ai.StudyDecoding(250, 80)
)

// Refiner turns retrieved sentences into bullet-point answers.
type Refiner struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewRefiner creates a Refiner backed by generator.
func NewRefiner(generator ai.Generator, opts ...Option) (*Refiner, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	s, err := applyOptions("refiner", opts)
	if err != nil {
		return nil, err
	}
	return &Refiner{generator: generator, logger: s.logger}, nil
}

// SummarizeContext condenses a long passage into a handful of bullet points.
// Only the first MaxSummaryInput characters are considered.
func (r *Refiner) SummarizeContext(ctx context.Context, text string) (string, error) {
	return r.generate(ctx, "summarize", summarizePrompt(truncateRunes(text, MaxSummaryInput)), summaryDecoding)
}

// RefineAnswer answers question from the retrieved sentences, summarizing the
// joined context first when it exceeds SummarizeThreshold characters.
func (r *Refiner) RefineAnswer(ctx context.Context, question string, sentences []string) (string, error) {
	passage := strings.Join(sentences, " ")
	if utf8.RuneCountInString(passage) > SummarizeThreshold {
		summary, err := r.SummarizeContext(ctx, passage)
		if err != nil {
			return "", err
		}
		r.logger.Debug("context summarized", "from", utf8.RuneCountInString(passage), "to", utf8.RuneCountInString(summary))
		passage = summary
	}
	return r.generate(ctx, "refine", refinePrompt(question, passage), refineDecoding)
}

// RAGAnswer passes the retrieved sentences straight to the generator as context.
func (r *Refiner) RAGAnswer(ctx context.Context, question string, sentences []string) (string, error) {
	return r.generate(ctx, "rag", ragPrompt(question, strings.Join(sentences, " ")), ragDecoding)
}

func (r *Refiner) generate(ctx context.Context, step, prompt string, opts ai.GenerateOptions) (string, error) {
	return generate(ctx, r.generator, r.logger, step, prompt, opts)
}

func generate(ctx context.Context, gen ai.Generator, logger *slog.Logger, step, prompt string, opts ai.GenerateOptions) (string, error) {
	out, err := gen.Generate(ctx, prompt, opts)
	if err != nil {
		logger.Error("generation failed", "step", step, "err", err)
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		logger.Warn("empty generation", "step", step)
		return "", ErrEmptyGeneration
	}
	return out, nil
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
