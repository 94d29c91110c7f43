// Package flat implements an exact, in-process nearest-neighbor index over fixed-length vectors.
package flat

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/nurseally/internal/domain"
)

// Metric is the distance function recorded in the index.
type Metric uint8

const (
	// L2 ranks by squared Euclidean distance.
	L2 Metric = iota + 1
	// Cosine ranks by 1 - cosine similarity. Vectors are normalized on insert.
	Cosine
)

// ParseMetric maps a config value to a metric.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "l2":
		return L2, nil
	case "cosine":
		return Cosine, nil
	default:
		return 0, fmt.Errorf("unknown distance metric %q", s)
	}
}

func (m Metric) String() string {
	switch m {
	case L2:
		return "l2"
	case Cosine:
		return "cosine"
	default:
		return fmt.Sprintf("metric(%d)", uint8(m))
	}
}

// Hit is one search result.
type Hit struct {
	Ordinal  int
	Distance float32
}

// Index stores vectors contiguously, keyed by insertion ordinal.
// Add must not run concurrently with Search; a built index is safe for concurrent readers.
type Index struct {
	dim    int
	metric Metric
	data   []float32
}

// New creates an empty index.
func New(dim int, metric Metric) *Index {
	return &Index{dim: dim, metric: metric}
}

// Dim returns the vector length.
func (x *Index) Dim() int { return x.dim }

// Metric returns the distance function.
func (x *Index) Metric() Metric { return x.metric }

// Len returns the number of stored vectors.
func (x *Index) Len() int {
	if x.dim == 0 {
		return 0
	}
	return len(x.data) / x.dim
}

// Add appends vectors; the first one stored gets ordinal Len().
func (x *Index) Add(vecs ...[]float32) error {
	for i, v := range vecs {
		if len(v) != x.dim {
			return fmt.Errorf("vector %d: got %d, want %d: %w", i, len(v), x.dim, domain.ErrVectorDimMismatch)
		}
	}
	for _, v := range vecs {
		start := len(x.data)
		x.data = append(x.data, v...)
		if x.metric == Cosine {
			normalize(x.data[start:])
		}
	}
	return nil
}

// Vector returns a copy of the stored vector at ordinal.
func (x *Index) Vector(ordinal int) ([]float32, bool) {
	if ordinal < 0 || ordinal >= x.Len() {
		return nil, false
	}
	return slices.Clone(x.data[ordinal*x.dim : (ordinal+1)*x.dim]), true
}

// Search returns up to k nearest vectors, nearest first. Equal distances
// are ordered by lower ordinal. An empty index yields no hits.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	n := x.Len()
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(query), x.dim, domain.ErrVectorDimMismatch)
	}

	q := query
	if x.metric == Cosine {
		q = slices.Clone(query)
		normalize(q)
	}

	hits := make([]Hit, n)
	for i := range n {
		hits[i] = Hit{Ordinal: i, Distance: x.distance(q, x.data[i*x.dim:(i+1)*x.dim])}
	}
	slices.SortFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	if k < n {
		hits = hits[:k]
	}
	return hits, nil
}

// Ordinals returns the ordinals of hits in order.
func Ordinals(hits []Hit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Ordinal
	}
	return out
}

func (x *Index) distance(q, v []float32) float32 {
	if x.metric == Cosine {
		var dot float32
		for i := range q {
			dot += q[i] * v[i]
		}
		return 1 - dot
	}
	var sum float32
	for i := range q {
		d := q[i] - v[i]
		sum += d * d
	}
	return sum
}

func normalize(v []float32) {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
