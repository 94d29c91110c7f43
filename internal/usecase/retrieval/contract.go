package retrieval

import (
	"context"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// VectorStore keeps one vector per chunk ordinal and answers exact nearest-neighbor queries.
type VectorStore interface {
	Replace(ctx context.Context, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]int, error)
	Len(ctx context.Context) (int, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
