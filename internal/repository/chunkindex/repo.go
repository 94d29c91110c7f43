// Package chunkindex stores chunk vectors in a Redis FLAT vector index.
package chunkindex

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/kailas-cloud/nurseally/internal/db"
	"github.com/kailas-cloud/nurseally/internal/domain"
)

const (
	fieldOrdinal = "ordinal"
	fieldVector  = "vector"

	writeBatchSize = 256
)

var (
	indexName = domain.KeyPrefix + "chunks"
	keyPrefix = domain.KeyPrefix + "chunk:"
)

// store is the consumer interface for the chunk index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase/retrieval.VectorStore on FT.SEARCH.
type Repo struct {
	store  store
	dim    int
	metric db.DistanceMetric
}

// New creates a chunk index repository. metric is "l2" or "cosine".
func New(s store, dim int, metric string) (*Repo, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dim)
	}
	var m db.DistanceMetric
	switch metric {
	case "", "l2":
		m = db.DistanceL2
	case "cosine":
		m = db.DistanceCosine
	default:
		return nil, fmt.Errorf("unknown distance metric %q", metric)
	}
	return &Repo{store: s, dim: dim, metric: m}, nil
}

// Replace drops the previous index and chunk hashes, then writes vectors[i] under ordinal i.
func (r *Repo) Replace(ctx context.Context, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != r.dim {
			return fmt.Errorf("vector %d: got %d, want %d: %w", i, len(v), r.dim, domain.ErrVectorDimMismatch)
		}
	}

	if err := r.store.DropIndex(ctx, indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop chunk index: %w", err)
	}
	old, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("scan chunk keys: %w", err)
	}
	for batch := range slices.Chunk(old, writeBatchSize) {
		if err = r.store.Del(ctx, batch...); err != nil {
			return fmt.Errorf("delete chunk keys: %w", err)
		}
	}

	def, err := db.NewIndex(indexName).
		Prefix(keyPrefix).
		Numeric(fieldOrdinal).
		VectorFlat(fieldVector, r.dim, r.metric, 0).
		Build()
	if err != nil {
		return fmt.Errorf("chunk index definition: %w", err)
	}
	if err = r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create chunk index: %w", err)
	}

	items := make([]db.HashSetItem, len(vectors))
	for i, v := range vectors {
		items[i] = db.HashSetItem{
			Key: chunkKey(i),
			Fields: map[string]string{
				fieldOrdinal: strconv.Itoa(i),
				fieldVector:  string(db.VectorToBytes(v)),
			},
		}
	}
	for batch := range slices.Chunk(items, writeBatchSize) {
		if err = r.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write chunk vectors: %w", err)
		}
	}
	return nil
}

// Search returns up to topK ordinals, nearest first, ties broken by lower ordinal.
func (r *Repo) Search(ctx context.Context, vector []float32, topK int) ([]int, error) {
	if topK <= 0 {
		return nil, nil
	}
	if len(vector) != r.dim {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(vector), r.dim, domain.ErrVectorDimMismatch)
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{fieldOrdinal},
	})
	if err != nil {
		return nil, fmt.Errorf("search chunk index: %w", err)
	}

	type hit struct {
		ordinal int
		score   float64
	}
	hits := make([]hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		o, err := strconv.Atoi(e.Fields[fieldOrdinal])
		if err != nil {
			continue
		}
		hits = append(hits, hit{ordinal: o, score: e.Score})
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.score, b.score); c != 0 {
			return c
		}
		return cmp.Compare(a.ordinal, b.ordinal)
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.ordinal
	}
	return out, nil
}

// Len returns the number of indexed chunks; a missing index counts as empty.
func (r *Repo) Len(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName, "*")
	if errors.Is(err, db.ErrIndexNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count chunk index: %w", err)
	}
	return n, nil
}

// Verify checks that the index holds exactly one vector per chunk.
func (r *Repo) Verify(ctx context.Context, chunks int) error {
	n, err := r.Len(ctx)
	if err != nil {
		return err
	}
	if n != chunks {
		return domain.NewArtifactMismatch(chunks, n)
	}
	return nil
}

func chunkKey(ordinal int) string {
	return keyPrefix + strconv.Itoa(ordinal)
}
