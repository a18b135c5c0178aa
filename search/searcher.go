package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/index"
	"github.com/poiesic/studybot/ingestion"
)

// Searcher finds relevant chunks and sentences in a loaded material.
type Searcher struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// SearchChunks returns up to k chunks closest to the query.
func (s *Searcher) SearchChunks(ctx context.Context, query string, loaded *ingestion.Loaded, k int) ([]core.ChunkMatch, error) {
	if !loaded.Ready() {
		return nil, core.ErrNotReady
	}
	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.searchChunks(loaded, queryVec, k)
}

// SearchBestSentences returns up to kSentences sentences, drawn from the
// kChunks chunks closest to the query, ranked by distance to the query.
func (s *Searcher) SearchBestSentences(ctx context.Context, query string, loaded *ingestion.Loaded, kChunks, kSentences int) ([]core.SentenceMatch, error) {
	return s.FindBestSentencesWithMonitor(ctx, query, loaded, kChunks, kSentences, nil)
}

// FindBestSentencesWithMonitor is SearchBestSentences with monitoring.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) FindBestSentencesWithMonitor(
	ctx context.Context,
	query string,
	loaded *ingestion.Loaded,
	kChunks, kSentences int,
	monitor SearchMonitor,
) ([]core.SentenceMatch, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if !loaded.Ready() {
		return nil, core.ErrNotReady
	}

	monitor.Start(query)

	// 1. Embed the query once for both stages
	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// 2. Chunk search
	chunks, err := s.searchChunks(loaded, queryVec, kChunks)
	if err != nil {
		return nil, err
	}
	monitor.AfterChunkSearch(chunks)

	// 3. Split candidates into sentences, keeping chunk rank order
	var sentences []string
	for _, match := range chunks {
		sentences = append(sentences, SplitSentences(match.Chunk.Text)...)
	}
	monitor.AfterSentenceSplit(sentences)

	if len(sentences) == 0 || kSentences <= 0 {
		monitor.Finish(nil)
		return []core.SentenceMatch{}, nil
	}

	// 4. Rank sentences with a temporary index
	vectors, err := s.embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		s.logger.Error("error embedding candidate sentences", "sentences", len(sentences), "err", err)
		return nil, err
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(sentences), len(vectors))
	}
	temp, err := index.Build(vectors)
	if err != nil {
		return nil, err
	}
	hits, err := temp.Search(queryVec, min(kSentences, len(sentences)))
	if err != nil {
		return nil, err
	}

	results := make([]core.SentenceMatch, len(hits))
	for i, hit := range hits {
		results[i] = core.SentenceMatch{Text: sentences[hit.Ordinal], Distance: hit.Distance}
	}
	monitor.AfterSentenceSearch(results)

	s.logger.Debug("sentence search complete", "chunks", len(chunks), "candidates", len(sentences), "results", len(results))
	monitor.Finish(results)
	return results, nil
}

func (s *Searcher) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	vec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	return vec, nil
}

func (s *Searcher) searchChunks(loaded *ingestion.Loaded, queryVec []float32, k int) ([]core.ChunkMatch, error) {
	hits, err := loaded.Index.Search(queryVec, k)
	if err != nil {
		return nil, err
	}

	matches := make([]core.ChunkMatch, len(hits))
	for i, hit := range hits {
		matches[i] = core.ChunkMatch{
			Chunk: core.Chunk{
				MaterialId: materialID(loaded),
				Ordinal:    hit.Ordinal,
				Text:       loaded.Chunks[hit.Ordinal],
			},
			Distance: hit.Distance,
		}
	}
	return matches, nil
}

func materialID(loaded *ingestion.Loaded) core.ID {
	if loaded.Material == nil {
		return 0
	}
	return loaded.Material.Id
}
