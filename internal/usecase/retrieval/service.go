// Package retrieval builds and queries the chunk embedding index.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// DefaultBatchSize is the number of chunks sent per embedding request during Build.
const DefaultBatchSize = 64

// Options configures a Service.
type Options struct {
	// Documents embeds corpus chunks during Build.
	Documents Embedder
	// Queries embeds questions. Defaults to Documents.
	Queries   Embedder
	Store     VectorStore
	BatchSize int
	// Timeout bounds each embedding call. Zero disables the bound.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Service pairs one embedding model with one vector store.
type Service struct {
	docs      Embedder
	queries   Embedder
	store     VectorStore
	chunks    []domain.Chunk
	batchSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a retrieval service over already-indexed chunks.
func New(opts Options, chunks []domain.Chunk) *Service {
	if opts.Queries == nil {
		opts.Queries = opts.Documents
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		docs:      opts.Documents,
		queries:   opts.Queries,
		store:     opts.Store,
		chunks:    chunks,
		batchSize: opts.BatchSize,
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
}

// Build embeds every chunk in ordinal order and replaces the store contents.
func (s *Service) Build(ctx context.Context, chunks []domain.Chunk) error {
	for i, c := range chunks {
		if c.Ordinal != i {
			return fmt.Errorf("chunk %d has ordinal %d: %w", i, c.Ordinal, domain.ErrInvalidArtifact)
		}
	}

	start := time.Now()
	res, err := domain.EmbedAll(ctx, s.docs, domain.Texts(chunks), s.batchSize)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if err = s.store.Replace(ctx, res.Embeddings); err != nil {
		return fmt.Errorf("store vectors: %w", err)
	}
	s.chunks = chunks

	s.logger.Info("Index built",
		zap.Int("chunks", len(chunks)),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Query returns up to topK chunk ordinals nearest to text, nearest first.
// An empty index returns an empty result without calling the embedder.
func (s *Service) Query(ctx context.Context, text string, topK int) ([]int, error) {
	if s.store == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	n, err := s.store.Len(ctx)
	if err != nil {
		return nil, fmt.Errorf("index size: %w", err)
	}
	if n == 0 || topK <= 0 {
		return nil, nil
	}

	embedCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	emb, err := s.queries.Embed(embedCtx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ordinals, err := s.store.Search(ctx, emb.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return ordinals, nil
}

// Retrieve resolves the nearest chunks for text. Ordinals the chunk list
// does not cover are skipped.
func (s *Service) Retrieve(ctx context.Context, text string, topK int) ([]domain.Chunk, error) {
	ordinals, err := s.Query(ctx, text, topK)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Chunk, 0, len(ordinals))
	for _, o := range ordinals {
		if o < 0 || o >= len(s.chunks) {
			s.logger.Warn("Index returned unknown ordinal", zap.Int("ordinal", o), zap.Int("chunks", len(s.chunks)))
			continue
		}
		out = append(out, s.chunks[o])
	}
	return out, nil
}

// Chunks returns the indexed chunks in ordinal order.
func (s *Service) Chunks() []domain.Chunk { return s.chunks }
