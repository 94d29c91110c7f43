package flat

import (
	"context"
	"fmt"
	"sync"
)

// Store exposes an Index through the context-aware vector store contract.
type Store struct {
	mu  sync.RWMutex
	idx *Index
}

// NewStore wraps idx. Replace swaps in a fresh index with the same dimension and metric.
func NewStore(idx *Index) *Store {
	return &Store{idx: idx}
}

// Replace rebuilds the index from vectors; vectors[i] gets ordinal i.
func (s *Store) Replace(_ context.Context, vectors [][]float32) error {
	s.mu.RLock()
	dim, metric := s.idx.Dim(), s.idx.Metric()
	s.mu.RUnlock()

	next := New(dim, metric)
	if err := next.Add(vectors...); err != nil {
		return fmt.Errorf("rebuild flat index: %w", err)
	}

	s.mu.Lock()
	s.idx = next
	s.mu.Unlock()
	return nil
}

// Search returns up to topK ordinals, nearest first.
func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]int, error) {
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()

	hits, err := idx.Search(vector, topK)
	if err != nil {
		return nil, err
	}
	return Ordinals(hits), nil
}

// Len returns the number of indexed vectors.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Len(), nil
}

// Index returns the current index snapshot.
func (s *Store) Index() *Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}
