package domain

import (
	"context"
	"fmt"
)

// Embedder turns a text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries one vector and its token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries vectors in input order and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedAll vectorizes texts in input order, batchSize at a time.
// Embedders without native batching are called once per text.
func EmbedAll(ctx context.Context, e Embedder, texts []string, batchSize int) (BatchEmbeddingResult, error) {
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	out := BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	be, native := e.(BatchEmbedder)
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		part := texts[start:end]

		var (
			res BatchEmbeddingResult
			err error
		)
		if native {
			res, err = be.BatchEmbed(ctx, part)
		} else {
			res, err = embedEach(ctx, e, part)
		}
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed texts [%d:%d]: %w", start, end, err)
		}
		if len(res.Embeddings) != len(part) {
			return BatchEmbeddingResult{}, fmt.Errorf(
				"embed texts [%d:%d]: got %d vectors: %w", start, end, len(res.Embeddings), ErrEmbeddingProviderError,
			)
		}
		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}

func embedEach(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	res := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		r, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed [%d]: %w", i, err)
		}
		res.Embeddings[i] = r.Embedding
		res.PromptTokens += r.PromptTokens
		res.TotalTokens += r.TotalTokens
	}
	return res, nil
}

// InstructionEmbedder prepends a fixed instruction before embedding.
// bge models expect it on queries only; corpus chunks are embedded bare.
type InstructionEmbedder struct {
	inner       Embedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (e *InstructionEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
