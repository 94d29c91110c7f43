package flat

import (
	"context"
	"slices"
	"testing"
)

func TestStore_ReplaceAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewStore(New(2, L2))

	if n, _ := s.Len(ctx); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}
	if err := s.Replace(ctx, [][]float32{{5, 5}, {0, 1}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, err := s.Search(ctx, []float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !slices.Equal(got, []int{1, 0}) {
		t.Errorf("Search = %v, want [1 0]", got)
	}

	if err = s.Replace(ctx, [][]float32{{9, 9}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n, _ := s.Len(ctx); n != 1 {
		t.Errorf("Len after second Replace = %d, want 1", n)
	}
}

func TestStore_ReplaceRejectsWrongDim(t *testing.T) {
	s := NewStore(New(3, L2))
	if err := s.Replace(context.Background(), [][]float32{{1, 2}}); err == nil {
		t.Fatal("expected dimension error")
	}
	if s.Index().Len() != 0 {
		t.Error("failed Replace must keep the previous index")
	}
}
