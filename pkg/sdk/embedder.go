package nurseally

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/nurseally/internal/domain"
	openaiTransport "github.com/kailas-cloud/nurseally/internal/transport/openai"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Chat message roles.
const (
	RoleSystem    = domain.RoleSystem
	RoleUser      = domain.RoleUser
	RoleAssistant = domain.RoleAssistant
)

// Message is one entry of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// ChatModel generates a reply to a prompt.
// Return ErrEmptyCompletion when the model produced nothing.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// serverEmbedder exposes the OpenAI-compatible transport through the public interface.
type serverEmbedder struct {
	inner *openaiTransport.Embedder
}

func newServerEmbedder(baseURL, apiKey, model string, dimensions int) *serverEmbedder {
	return &serverEmbedder{inner: openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      model,
		Dimensions: dimensions,
		Provider:   "sdk",
	})}
}

func (s *serverEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	r, err := s.inner.Embed(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err //nolint:wrapcheck // already wrapped by the transport
	}
	return EmbeddingResult{Embedding: r.Embedding, PromptTokens: r.PromptTokens, TotalTokens: r.TotalTokens}, nil
}

func (s *serverEmbedder) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx) //nolint:wrapcheck // already wrapped by the transport
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"nurseally: embedder not configured (use WithEmbedder or WithEmbeddingServer)",
	)
}

// chatAdapter wraps public ChatModel to satisfy internal domain.ChatBackend.
type chatAdapter struct {
	inner ChatModel
}

func (a *chatAdapter) Complete(ctx context.Context, messages []domain.Message, temperature float64) (string, error) {
	msgs := make([]Message, len(messages))
	for i, m := range messages {
		msgs[i] = Message{Role: m.Role, Content: m.Content}
	}
	return a.inner.Complete(ctx, msgs, temperature) //nolint:wrapcheck // caller-provided model
}

// HealthCheck delegates when the custom model can report its health.
func (a *chatAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // caller-provided model
	}
	return nil
}
