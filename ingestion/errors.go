package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a material or chunk repository is not provided.
	ErrRepositoryRequired = errors.New("repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoText is returned when a document yields no extractable text.
	ErrNoText = errors.New("no text extracted from document")

	// ErrIndexMismatch is returned when a stored index and chunk list disagree in length.
	ErrIndexMismatch = errors.New("index and chunk count mismatch")

	// ErrEmbeddingMismatch is returned when the embedder returns the wrong number of vectors.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")
)
