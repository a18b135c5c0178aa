package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
	"github.com/poiesic/studybot/index"
	"github.com/poiesic/studybot/storage"
	"golang.org/x/sync/errgroup"
)

// Loaded is a material ready for retrieval.
// Chunks[i] is the text whose embedding is vector i of Index.
type Loaded struct {
	Material *core.Material
	Chunks   []string
	Index    *index.Flat
}

// Ready reports whether the chunk list and index exist and agree in length.
func (l *Loaded) Ready() bool {
	return l != nil && l.Index != nil && len(l.Chunks) > 0 && l.Index.Len() == len(l.Chunks)
}

// Pipeline orchestrates building and loading study materials.
// It manages concurrent embedding of chunk batches.
type Pipeline struct {
	materials      storage.MaterialRepository
	chunks         storage.ChunkRepository
	embeddingPool  *ants.Pool
	embeddingProc  *embeddingProcessor
	embedder       ai.Embedder
	poolSize       int
	batchSize      int
	indexDir       string
	embeddingModel string
	extract        ExtractFunc
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		p.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithIndexDir sets the directory holding index snapshots.
// Default is "indexes" in the working directory.
func WithIndexDir(dir string) Option {
	return func(p *Pipeline) error {
		if dir == "" {
			return errors.New("index directory must not be empty")
		}
		p.indexDir = dir
		return nil
	}
}

// WithEmbeddingModel records the embedding model name on built materials.
func WithEmbeddingModel(model string) Option {
	return func(p *Pipeline) error {
		p.embeddingModel = model
		return nil
	}
}

// WithExtractor replaces PDF text extraction.
// Default is ExtractText.
func WithExtractor(fn ExtractFunc) Option {
	return func(p *Pipeline) error {
		if fn == nil {
			fn = ExtractText
		}
		p.extract = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new build pipeline.
func NewPipeline(
	materials storage.MaterialRepository,
	chunks storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if materials == nil || chunks == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		materials:     materials,
		chunks:        chunks,
		embeddingPool: embeddingPool,
		embedder:      provider.Embedder(),
		poolSize:      poolSize,
		batchSize:     32,
		indexDir:      "indexes",
		extract:       ExtractText,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embeddingProc, err := newEmbeddingProcessor(p.embedder, p.embeddingPool, p.batchSize, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// MaterialName returns the material name used for a PDF path: its base filename.
func MaterialName(path string) string {
	return filepath.Base(path)
}

// IndexPath returns where the index snapshot for a material is stored.
func (p *Pipeline) IndexPath(id core.ID) string {
	return filepath.Join(p.indexDir, fmt.Sprintf("%016x.idx", uint64(id)))
}

// Build extracts, chunks, embeds and indexes a PDF, then persists the
// material, its chunks and its index snapshot under name.
// Building an existing name replaces it.
func (p *Pipeline) Build(ctx context.Context, name, pdfPath string) (*Loaded, error) {
	p.logger.Info("building material", "name", name, "path", pdfPath)

	text, pages, err := p.extract(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return p.BuildFromText(ctx, name, pdfPath, text, pages)
}

// BuildFromText builds a material from already extracted text.
// pages selects the chunking parameters.
func (p *Pipeline) BuildFromText(ctx context.Context, name, source, text string, pages int) (*Loaded, error) {
	if strings.TrimSpace(name) == "" {
		return nil, core.ErrEmptyName
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, source)
	}

	chunks, params, err := AdaptiveChunking(text, pages)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("chunked text", "name", name, "pages", pages, "chunks", len(chunks),
		"size", params.Size, "overlap", params.Overlap)

	vectors, err := p.embeddingProc.process(ctx, chunks)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(vectors)
	if err != nil {
		return nil, err
	}

	material := &core.Material{
		Id:             core.MaterialID(name),
		Name:           name,
		SourcePath:     source,
		Pages:          pages,
		ChunkSize:      params.Size,
		Overlap:        params.Overlap,
		Dimension:      idx.Dimension(),
		ChunkCount:     len(chunks),
		EmbeddingModel: p.embeddingModel,
	}

	saved, err := p.commit(ctx, material, chunks, idx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("built material", "name", name, "chunks", len(chunks), "dimension", idx.Dimension())
	return &Loaded{Material: saved, Chunks: chunks, Index: idx}, nil
}

// commit persists a built material. The index is staged next to the live
// snapshot and only renamed into place once chunks and material are stored,
// so a failed rebuild leaves the previous build loadable.
func (p *Pipeline) commit(ctx context.Context, material *core.Material, chunks []string, idx *index.Flat) (*core.Material, error) {
	path := p.IndexPath(material.Id)
	staged := path + ".new"
	if err := idx.SaveToFile(staged); err != nil {
		return nil, fmt.Errorf("saving index for %s: %w", material.Name, err)
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(staged)
		}
	}()

	previous, err := p.chunks.GetChunks(ctx, material.Id)
	if err != nil {
		return nil, err
	}
	// Chunk writes are batched and may land partially.
	if err := p.chunks.ReplaceChunks(ctx, material.Id, chunks); err != nil {
		p.restoreChunks(material, previous)
		return nil, err
	}
	saved, err := p.materials.SaveMaterial(ctx, material)
	if err != nil {
		p.restoreChunks(material, previous)
		return nil, err
	}
	if err := os.Rename(staged, path); err != nil {
		return nil, fmt.Errorf("installing index for %s: %w", material.Name, err)
	}
	committed = true
	return saved, nil
}

func (p *Pipeline) restoreChunks(material *core.Material, previous []*core.Chunk) {
	texts := make([]string, len(previous))
	for i, chunk := range previous {
		texts[i] = chunk.Text
	}
	// The caller's context may already be canceled.
	if err := p.chunks.ReplaceChunks(context.Background(), material.Id, texts); err != nil {
		p.logger.Error("failed to restore chunks after rebuild failure", "name", material.Name, "err", err)
	}
}

// BuildAll builds several PDFs concurrently, naming each by MaterialName.
// Results are in input order. The first failure cancels the rest.
func (p *Pipeline) BuildAll(ctx context.Context, paths []string) ([]*Loaded, error) {
	results := make([]*Loaded, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.poolSize)
	for i, path := range paths {
		g.Go(func() error {
			loaded, err := p.Build(gctx, MaterialName(path), path)
			if err != nil {
				return fmt.Errorf("building %s: %w", path, err)
			}
			results[i] = loaded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Load restores a previously built material by name.
func (p *Pipeline) Load(ctx context.Context, name string) (*Loaded, error) {
	id := core.MaterialID(name)

	material, err := p.materials.GetMaterial(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading material %q: %w", name, err)
	}

	chunks, err := p.chunks.GetChunks(ctx, id)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	idx, err := index.LoadFromFile(p.IndexPath(id))
	if err != nil {
		return nil, fmt.Errorf("loading index for %q: %w", name, err)
	}
	if idx.Len() != len(texts) {
		return nil, fmt.Errorf("%w: %q has %d vectors and %d chunks", ErrIndexMismatch, name, idx.Len(), len(texts))
	}

	p.logger.Debug("loaded material", "name", name, "chunks", len(texts))
	return &Loaded{Material: material, Chunks: texts, Index: idx}, nil
}

// Delete removes a material, its chunks and its index snapshot.
func (p *Pipeline) Delete(ctx context.Context, name string) error {
	id := core.MaterialID(name)
	if err := p.materials.DeleteMaterial(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(p.IndexPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
