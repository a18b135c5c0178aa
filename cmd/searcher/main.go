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


package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/studybot"
	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// stageMonitor prints each stage of a two-stage search.
type stageMonitor struct{}

func (stageMonitor) Start(query string) { fmt.Printf("query: %q\n", query) }

func (stageMonitor) AfterChunkSearch(chunks []core.ChunkMatch) {
	fmt.Printf("%d candidate chunks\n", len(chunks))
	for _, c := range chunks {
		fmt.Printf("  chunk %d [%0.3f] %.60s...\n", c.Chunk.Ordinal, c.Distance, c.Chunk.Text)
	}
}

func (stageMonitor) AfterSentenceSplit(sentences []string) {
	fmt.Printf("%d candidate sentences\n", len(sentences))
}

func (stageMonitor) AfterSentenceSearch(_ []core.SentenceMatch) {}

func (stageMonitor) Finish(results []core.SentenceMatch) {
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' [%0.3f]\n", i, hit.Text, hit.Distance)
	}
}

func main() {
	dataDir := flag.String("data-dir", "./studybot-data", "study store directory")
	material := flag.String("material", "", "material name")
	host := flag.String("host", "http://localhost:11434/v1", "embedding service host")
	model := flag.String("model", ai.DefaultConfig().EmbeddingModel, "embedding model")
	kChunks := flag.Int("k-chunks", studybot.DefaultKChunks, "chunks searched")
	kSentences := flag.Int("k-sentences", 5, "sentences returned")
	flag.Parse()

	if *material == "" {
		fmt.Fprintln(os.Stderr, "usage: searcher -material <name> [query]")
		os.Exit(2)
	}

	a, err := studybot.NewAssistant(*dataDir, studybot.WithAIConfig(ai.NewConfig(
		ai.WithHost(*host),
		ai.WithEmbeddingModel(*model),
	)))
	if err != nil {
		panic(err)
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Use(ctx, *material); err != nil {
		panic(err)
	}

	query := "what is the main idea"
	if flag.NArg() > 0 {
		query = strings.Join(flag.Args(), " ")
	}
	_, err = a.Searcher().FindBestSentencesWithMonitor(ctx, query, a.Active(), *kChunks, *kSentences, stageMonitor{})
	if err != nil {
		panic(err)
	}
}
