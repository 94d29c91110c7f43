package answer

import (
	"context"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// StructuredMatcher answers from reference tables without touching the index.
type StructuredMatcher interface {
	Answer(query string) (string, bool)
}

// Retriever returns the chunks nearest to a question, nearest first.
type Retriever interface {
	Retrieve(ctx context.Context, text string, topK int) ([]domain.Chunk, error)
}
