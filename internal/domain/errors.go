package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals an empty or malformed question.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMBackend signals a language-model backend failure.
	ErrLLMBackend = errors.New("language model backend error")
	// ErrEmptyCompletion signals a completion response without choices.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrIndexNotLoaded signals that no nearest-neighbor index is available.
	ErrIndexNotLoaded = errors.New("index not loaded")
	// ErrArtifactMismatch signals that chunk and vector artifacts are out of sync.
	ErrArtifactMismatch = errors.New("artifact mismatch")
	// ErrInvalidArtifact signals an unreadable or corrupt artifact file.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// ArtifactMismatchError reports a chunk/vector count disagreement.
type ArtifactMismatchError struct {
	Chunks  int
	Vectors int
}

func (e *ArtifactMismatchError) Error() string {
	return fmt.Sprintf("%s: %d chunks but %d vectors", ErrArtifactMismatch.Error(), e.Chunks, e.Vectors)
}

func (e *ArtifactMismatchError) Unwrap() error { return ErrArtifactMismatch }

// NewArtifactMismatch creates an artifact mismatch error.
func NewArtifactMismatch(chunks, vectors int) error {
	return &ArtifactMismatchError{Chunks: chunks, Vectors: vectors}
}
