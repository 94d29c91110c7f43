package nurseally

import (
	"context"
	"testing"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/domain/vitals"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
	"github.com/kailas-cloud/nurseally/internal/repository/artifacts"
)

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

func fixedEmbedder(vec ...float32) *mockEmbedder {
	return &mockEmbedder{fn: func(_ context.Context, _ string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
	}}
}

type mockChat struct {
	completeFn func(ctx context.Context, messages []Message, temperature float64) (string, error)
	messages   []Message
	calls      int
}

func (m *mockChat) Complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	m.calls++
	m.messages = messages
	if m.completeFn != nil {
		return m.completeFn(ctx, messages, temperature)
	}
	return "Give small frequent sips.", nil
}

type healthyChat struct {
	mockChat
	healthErr error
}

func (m *healthyChat) HealthCheck(_ context.Context) error { return m.healthErr }

// writeArtifacts creates an artifact directory with two chunks, a one-row
// heart-rate table and, unless vectors is nil, a matching 2-d flat index.
func writeArtifacts(t *testing.T, vectors ...[]float32) string {
	t.Helper()
	dir := artifacts.NewDir(t.TempDir())

	chunks := domain.NewChunks([]string{"alpha passage", "beta passage"})
	if err := dir.WriteChunks(chunks); err != nil {
		t.Fatalf("WriteChunks: %v", err)
	}
	rows := []vitals.Row{{"Age": "1 yr - <2", "Heart Rate": "100-150"}}
	if err := dir.WriteRows(rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	if vectors == nil {
		return dir.Path()
	}

	idx := flat.New(2, flat.L2)
	if err := idx.Add(vectors...); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := dir.WriteIndex(idx); err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	return dir.Path()
}
