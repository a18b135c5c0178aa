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


// Package studybot is a retrieval-augmented study assistant over PDF documents.
//
// An Assistant builds or loads study materials, answers questions from the
// active material, generates quizzes and tracks a student's progress.
package studybot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/ai/openai"
	"github.com/poiesic/studybot/answer"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/ingestion"
	"github.com/poiesic/studybot/reembed"
	"github.com/poiesic/studybot/search"
	"github.com/poiesic/studybot/storage"
	"github.com/poiesic/studybot/storage/badger"
	"github.com/poiesic/studybot/tracking"
)

// Retrieval defaults.
const (
	DefaultKChunks    = 3
	DefaultKSentences = 3
	DefaultRAGTopK    = 5
	DefaultQuizTopK   = 3

	// DefaultStudentID is used when no student is configured.
	DefaultStudentID = "default"

	// quizSentences is the number of sentences retrieved as quiz and RAG context.
	quizSentences = 3
)

// Assistant is a study session over a library of materials with one active material.
type Assistant struct {
	repos        *badger.Repositories
	progress     storage.ProgressRepository
	ownsProgress bool
	provider     ai.AIProvider
	ownsProvider bool
	pipeline     *ingestion.Pipeline
	searcher     *search.Searcher
	refiner      *answer.Refiner
	quizzer      *answer.QuizGenerator
	tracker      *tracking.Tracker
	studentID    string
	indexDir     string
	logger       *slog.Logger

	mu      sync.RWMutex
	library map[string]*ingestion.Loaded
	active  string

	closeOnce sync.Once
	closeErr  error
}

// Option configures an Assistant.
type Option func(*assistantOptions) error

type assistantOptions struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	studentID       string
	progress        storage.ProgressRepository
	logger          *slog.Logger
	pipelineOptions []ingestion.Option
	inMemory        bool
}

// WithAIConfig sets the configuration of the default OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *assistantOptions) error {
		if config == nil {
			return errors.New("ai config must not be nil")
		}
		o.aiConfig = config
		return nil
	}
}

// WithProvider uses provider instead of creating one. The caller keeps
// ownership and must close it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *assistantOptions) error {
		o.provider = provider
		return nil
	}
}

// WithStudentID sets the student whose activity is logged.
// Default is "default".
func WithStudentID(id string) Option {
	return func(o *assistantOptions) error {
		if strings.TrimSpace(id) == "" {
			return core.ErrEmptyStudentID
		}
		o.studentID = id
		return nil
	}
}

// WithProgressRepository logs progress to repo instead of the material store.
// The Assistant takes ownership and closes it.
func WithProgressRepository(repo storage.ProgressRepository) Option {
	return func(o *assistantOptions) error {
		o.progress = repo
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *assistantOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithPipelineOptions passes extra options to the build pipeline.
func WithPipelineOptions(opts ...ingestion.Option) Option {
	return func(o *assistantOptions) error {
		o.pipelineOptions = append(o.pipelineOptions, opts...)
		return nil
	}
}

// WithInMemory keeps the material store in memory. Index snapshots are still
// written under the data directory.
func WithInMemory() Option {
	return func(o *assistantOptions) error {
		o.inMemory = true
		return nil
	}
}

// NewAssistant opens the study store under dataDir and wires every component.
func NewAssistant(dataDir string, opts ...Option) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig:  ai.DefaultConfig(),
		studentID: DefaultStudentID,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	repos, err := badger.OpenRepositories(filepath.Join(dataDir, "db"), options.inMemory)
	if err != nil {
		if options.progress != nil {
			options.progress.Close()
		}
		return nil, err
	}

	a := &Assistant{
		repos:     repos,
		progress:  repos.Progress,
		provider:  options.provider,
		studentID: options.studentID,
		indexDir:  filepath.Join(dataDir, "indexes"),
		logger:    options.logger.With("component", "assistant"),
		library:   make(map[string]*ingestion.Loaded),
	}
	if options.progress != nil {
		a.progress = options.progress
		a.ownsProgress = true
	}

	if a.provider == nil {
		a.provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.ownsProvider = true
	}

	if err := a.wire(options); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Assistant) wire(options *assistantOptions) error {
	var err error
	pipelineOpts := append([]ingestion.Option{
		ingestion.WithIndexDir(a.indexDir),
		ingestion.WithEmbeddingModel(options.aiConfig.EmbeddingModel),
		ingestion.WithLogger(options.logger),
	}, options.pipelineOptions...)
	if a.pipeline, err = ingestion.NewPipeline(a.repos.Materials, a.repos.Chunks, a.provider, pipelineOpts...); err != nil {
		return err
	}
	if a.searcher, err = search.NewSearcher(a.provider.Embedder(), search.WithLogger(options.logger)); err != nil {
		return err
	}
	if a.refiner, err = answer.NewRefiner(a.provider.Generator(), answer.WithLogger(options.logger)); err != nil {
		return err
	}
	if a.quizzer, err = answer.NewQuizGenerator(a.provider.Generator(), answer.WithLogger(options.logger)); err != nil {
		return err
	}
	a.tracker, err = tracking.NewTracker(a.progress, tracking.WithLogger(options.logger))
	return err
}

// Close releases the pipeline, the provider and the stores.
// Calling Close more than once is safe.
func (a *Assistant) Close() error {
	a.closeOnce.Do(func() { a.closeErr = a.close() })
	return a.closeErr
}

func (a *Assistant) close() error {
	var errs []error
	if a.pipeline != nil {
		a.pipeline.Release()
	}
	if a.ownsProvider && a.provider != nil {
		if err := a.provider.Close(); err != nil {
			a.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if a.ownsProgress {
		if err := a.progress.Close(); err != nil {
			a.logger.Error("error closing progress repository", "err", err)
			errs = append(errs, err)
		}
	}
	if err := a.repos.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StudentID returns the student whose activity is logged.
func (a *Assistant) StudentID() string {
	return a.studentID
}

// BuildFromPDF builds a material from a PDF and makes it active.
// An empty name uses the PDF's base filename.
func (a *Assistant) BuildFromPDF(ctx context.Context, path, name string) (*ingestion.Loaded, error) {
	if name == "" {
		name = ingestion.MaterialName(path)
	}
	loaded, err := a.pipeline.Build(ctx, name, path)
	if err != nil {
		return nil, err
	}
	a.add(loaded, true)
	return loaded, nil
}

// BuildAll builds several PDFs concurrently. The first one becomes active when
// no material is active yet.
func (a *Assistant) BuildAll(ctx context.Context, paths []string) ([]*ingestion.Loaded, error) {
	loaded, err := a.pipeline.BuildAll(ctx, paths)
	if err != nil {
		return nil, err
	}
	for i, l := range loaded {
		a.add(l, i == 0 && a.Active() == nil)
	}
	return loaded, nil
}

// BuildFromText builds a material from already extracted text and makes it active.
func (a *Assistant) BuildFromText(ctx context.Context, name, text string, pages int) (*ingestion.Loaded, error) {
	loaded, err := a.pipeline.BuildFromText(ctx, name, name, text, pages)
	if err != nil {
		return nil, err
	}
	a.add(loaded, true)
	return loaded, nil
}

// LoadFromCache restores a previously built material and makes it active.
func (a *Assistant) LoadFromCache(ctx context.Context, name string) (*ingestion.Loaded, error) {
	loaded, err := a.pipeline.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	a.add(loaded, true)
	return loaded, nil
}

// Materials lists every stored material ordered by name.
func (a *Assistant) Materials(ctx context.Context) ([]*core.Material, error) {
	return a.repos.Materials.ListMaterials(ctx)
}

// Loaded returns the names of materials held in memory, sorted.
func (a *Assistant) Loaded() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.library))
	for name := range a.library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Use makes name the active material, loading it from the store if needed.
func (a *Assistant) Use(ctx context.Context, name string) error {
	a.mu.Lock()
	if _, ok := a.library[name]; ok {
		a.active = name
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	_, err := a.LoadFromCache(ctx, name)
	return err
}

// Active returns the active material, or nil when none is selected.
func (a *Assistant) Active() *ingestion.Loaded {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.library[a.active]
}

// DeleteMaterial removes a material from the store and the library.
func (a *Assistant) DeleteMaterial(ctx context.Context, name string) error {
	if err := a.pipeline.Delete(ctx, name); err != nil {
		return err
	}
	a.evict(name)
	return nil
}

// Reindex re-embeds a stored material with the current embedder. A loaded
// copy is reloaded from the new index and stays active if it was.
func (a *Assistant) Reindex(ctx context.Context, name string, config *reembed.Config, progress io.Writer) (*core.Material, error) {
	r := reembed.NewReindexer(a.repos.Materials, a.repos.Chunks, a.provider.Embedder(), a.pipeline.IndexPath, config, progress)
	material, err := r.Run(ctx, name)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	_, wasLoaded := a.library[name]
	wasActive := a.active == name
	a.mu.RUnlock()
	if !wasLoaded {
		return material, nil
	}

	loaded, err := a.pipeline.Load(ctx, name)
	if err != nil {
		a.evict(name)
		return nil, fmt.Errorf("reloading %q after reindex: %w", name, err)
	}
	a.add(loaded, wasActive)
	return material, nil
}

// Searcher returns the searcher used for retrieval.
func (a *Assistant) Searcher() *search.Searcher {
	return a.searcher
}

// SearchBestSentences runs two-stage search against the active material.
func (a *Assistant) SearchBestSentences(ctx context.Context, query string, kChunks, kSentences int) ([]core.SentenceMatch, error) {
	return a.searcher.SearchBestSentences(ctx, query, a.Active(), orDefault(kChunks, DefaultKChunks), orDefault(kSentences, DefaultKSentences))
}

// Answer retrieves the best sentences for question and refines them into a
// bullet-point answer. The exchange is logged.
func (a *Assistant) Answer(ctx context.Context, question string, kChunks, kSentences int) (string, error) {
	matches, err := a.SearchBestSentences(ctx, question, kChunks, kSentences)
	if err != nil {
		return "", err
	}
	out, err := a.refiner.RefineAnswer(ctx, question, sentenceTexts(matches))
	if err != nil {
		return "", err
	}
	a.logQA(ctx, question, out)
	return out, nil
}

// RAGAnswer answers question from the sentences of the topK closest chunks
// without a summarization step. The exchange is logged.
func (a *Assistant) RAGAnswer(ctx context.Context, question string, topK int) (string, error) {
	matches, err := a.searcher.SearchBestSentences(ctx, question, a.Active(), orDefault(topK, DefaultRAGTopK), quizSentences)
	if err != nil {
		return "", err
	}
	out, err := a.refiner.RAGAnswer(ctx, question, sentenceTexts(matches))
	if err != nil {
		return "", err
	}
	a.logQA(ctx, question, out)
	return out, nil
}

// GenerateQuiz builds an MCQ and a short question about topic and logs an
// ungraded attempt.
func (a *Assistant) GenerateQuiz(ctx context.Context, topic string, topK int) (*core.Quiz, error) {
	matches, err := a.searcher.SearchBestSentences(ctx, topic, a.Active(), orDefault(topK, DefaultQuizTopK), quizSentences)
	if err != nil {
		return nil, err
	}
	passage := strings.Join(sentenceTexts(matches), " ")

	quiz := &core.Quiz{Topic: topic}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mcq, err := a.quizzer.GenerateMCQ(gctx, passage, answer.DefaultOptions)
		quiz.MCQ = mcq
		return err
	})
	g.Go(func() error {
		sq, err := a.quizzer.GenerateShortQuestion(gctx, passage)
		quiz.Short = sq
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	attempt, err := a.tracker.LogQuiz(ctx, a.studentID, topic)
	if err != nil {
		return nil, err
	}
	quiz.AttemptId = attempt.Id
	return quiz, nil
}

// SubmitQuizAnswer grades choice against the quiz's MCQ and records the result.
func (a *Assistant) SubmitQuizAnswer(ctx context.Context, quiz *core.Quiz, choice string) (bool, error) {
	if quiz == nil {
		return false, fmt.Errorf("%w: quiz is nil", core.ErrInvalidRecord)
	}
	correct := answer.Grade(quiz.MCQ, choice)
	if err := a.tracker.Grade(ctx, quiz.AttemptId, correct); err != nil {
		return false, err
	}
	return correct, nil
}

// TrackProgress summarizes the student's activity.
func (a *Assistant) TrackProgress(ctx context.Context) (core.Progress, error) {
	return a.tracker.Progress(ctx, a.studentID)
}

// History returns the student's most recent questions, newest first.
func (a *Assistant) History(ctx context.Context, limit int) ([]*core.QARecord, error) {
	return a.tracker.History(ctx, a.studentID, limit)
}

func (a *Assistant) add(loaded *ingestion.Loaded, activate bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	name := loaded.Material.Name
	a.library[name] = loaded
	if activate {
		a.active = name
	}
}

func (a *Assistant) evict(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.library, name)
	if a.active == name {
		a.active = ""
	}
}

// logQA records an exchange. A logging failure does not discard the answer.
func (a *Assistant) logQA(ctx context.Context, question, out string) {
	if _, err := a.tracker.LogQA(ctx, a.studentID, question, out); err != nil {
		a.logger.Warn("answer not logged", "student", a.studentID, "err", err)
	}
}

func sentenceTexts(matches []core.SentenceMatch) []string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	return texts
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
