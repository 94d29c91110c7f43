package retrieval

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/nurseally/internal/domain"
	"github.com/kailas-cloud/nurseally/internal/index/flat"
)

// keywordEmbedder counts occurrences of fixed keywords.
type keywordEmbedder struct {
	keywords []string
	calls    int
	err      error
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.keywords))
	for i, k := range e.keywords {
		vec[i] = float32(strings.Count(lower, k))
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

func newKeywordEmbedder() *keywordEmbedder {
	return &keywordEmbedder{keywords: []string{"fluid", "cpr", "fever"}}
}

var corpus = domain.NewChunks([]string{
	"Maintenance fluid requirements are calculated by weight.",
	"Start CPR with 30 compressions and 2 breaths for a single rescuer.",
	"Fever in infants under 3 months requires urgent evaluation.",
	"Fluid boluses of 20 mL/kg are given in shock, repeat fluid as needed.",
})

func newService(t *testing.T, emb Embedder) (*Service, *flat.Store) {
	t.Helper()
	store := flat.NewStore(flat.New(3, flat.L2))
	svc := New(Options{Documents: emb, Store: store, BatchSize: 2}, nil)
	if err := svc.Build(context.Background(), corpus); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return svc, store
}

func TestQuery_NearestFirst(t *testing.T) {
	svc, _ := newService(t, newKeywordEmbedder())

	got, err := svc.Query(context.Background(), "how much fluid?", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !slices.Equal(got, []int{0, 3}) {
		t.Errorf("Query = %v, want [0 3]", got)
	}
}

func TestRetrieve_ReturnsChunks(t *testing.T) {
	svc, _ := newService(t, newKeywordEmbedder())

	got, err := svc.Retrieve(context.Background(), "CPR steps", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].Ordinal != 1 {
		t.Errorf("Retrieve = %v, want chunk 1", got)
	}
}

func TestBuild_TwiceIsDeterministic(t *testing.T) {
	a, _ := newService(t, newKeywordEmbedder())
	b, _ := newService(t, newKeywordEmbedder())

	for _, q := range []string{"fluid", "fever", "cpr", "nothing relevant"} {
		ra, errA := a.Query(context.Background(), q, 4)
		rb, errB := b.Query(context.Background(), q, 4)
		if errA != nil || errB != nil {
			t.Fatalf("Query(%q): %v / %v", q, errA, errB)
		}
		if !slices.Equal(ra, rb) {
			t.Errorf("Query(%q) differs: %v vs %v", q, ra, rb)
		}
	}
}

func TestQuery_EmptyIndexSkipsEmbedder(t *testing.T) {
	emb := newKeywordEmbedder()
	svc := New(Options{Documents: emb, Store: flat.NewStore(flat.New(3, flat.L2))}, nil)

	got, err := svc.Query(context.Background(), "fluid", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times, want 0", emb.calls)
	}
}

func TestQuery_EmbedderError(t *testing.T) {
	emb := newKeywordEmbedder()
	svc, _ := newService(t, emb)
	emb.err = domain.ErrEmbeddingProviderError

	_, err := svc.Query(context.Background(), "fluid", 5)
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestQuery_NoStore(t *testing.T) {
	svc := New(Options{Documents: newKeywordEmbedder()}, nil)
	_, err := svc.Query(context.Background(), "fluid", 5)
	if !errors.Is(err, domain.ErrIndexNotLoaded) {
		t.Errorf("expected ErrIndexNotLoaded, got %v", err)
	}
}

func TestQuery_UsesQueryEmbedder(t *testing.T) {
	docs := newKeywordEmbedder()
	queries := newKeywordEmbedder()
	store := flat.NewStore(flat.New(3, flat.L2))
	svc := New(Options{Documents: docs, Queries: queries, Store: store}, nil)
	if err := svc.Build(context.Background(), corpus); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := svc.Query(context.Background(), "fever", 1); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if docs.calls != len(corpus) || queries.calls != 1 {
		t.Errorf("docs calls = %d, query calls = %d", docs.calls, queries.calls)
	}
}

func TestBuild_RejectsOutOfOrderOrdinals(t *testing.T) {
	svc := New(Options{Documents: newKeywordEmbedder(), Store: flat.NewStore(flat.New(3, flat.L2))}, nil)
	err := svc.Build(context.Background(), []domain.Chunk{{Ordinal: 1, Text: "x"}})
	if !errors.Is(err, domain.ErrInvalidArtifact) {
		t.Errorf("expected ErrInvalidArtifact, got %v", err)
	}
}
