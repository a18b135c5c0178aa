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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/studybot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client  llms.Model
	limiter *rate.Limiter
	logger  *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:  client,
		limiter: newLimiter(config.RequestsPerSecond),
		logger:  slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new text generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate sends prompt as a single user message and returns the cleaned reply.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
	if err := waitLimiter(ctx, g.limiter); err != nil {
		return "", err
	}

	g.logger.Debug("generating text", "prompt_length", len(prompt), "max_length", opts.MaxLength)
	out, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, callOptions(opts)...)
	if err != nil {
		g.logger.Error("failed to generate text", "err", err)
		return "", err
	}
	return cleanGeneration(out), nil
}

// callOptions maps decoding parameters onto langchaingo call options.
// Backends ignore the ones they do not support.
func callOptions(opts ai.GenerateOptions) []llms.CallOption {
	var out []llms.CallOption
	if opts.MaxLength > 0 {
		out = append(out, llms.WithMaxTokens(opts.MaxLength), llms.WithMaxLength(opts.MaxLength))
	}
	if opts.MinLength > 0 {
		out = append(out, llms.WithMinLength(opts.MinLength))
	}
	if opts.Sample {
		out = append(out, llms.WithTemperature(opts.Temperature))
		if opts.TopP > 0 {
			out = append(out, llms.WithTopP(opts.TopP))
		}
		if opts.TopK > 0 {
			out = append(out, llms.WithTopK(opts.TopK))
		}
	} else {
		out = append(out, llms.WithTemperature(0))
	}
	if opts.RepetitionPenalty > 0 {
		out = append(out, llms.WithRepetitionPenalty(opts.RepetitionPenalty))
		// OpenAI-style servers only understand frequency_penalty in [-2, 2].
		if opts.RepetitionPenalty > 1 {
			out = append(out, llms.WithFrequencyPenalty(min(opts.RepetitionPenalty-1, 2)))
		}
	}
	return out
}
