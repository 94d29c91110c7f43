package nurseally

import "github.com/kailas-cloud/nurseally/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrIndexNotLoaded         = domain.ErrIndexNotLoaded
	ErrArtifactMismatch       = domain.ErrArtifactMismatch
	ErrInvalidArtifact        = domain.ErrInvalidArtifact
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrLLMBackend             = domain.ErrLLMBackend
	ErrEmptyCompletion        = domain.ErrEmptyCompletion
)
