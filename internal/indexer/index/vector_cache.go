package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CacheState is the freshness of the cached document vectors.
type CacheState int

const (
	// Clean means every cached vector reflects the current vocabulary and
	// statistics.
	Clean CacheState = iota
	// Dirty means the corpus changed since the last rebuild.
	Dirty
)

func (s CacheState) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return fmt.Sprintf("CacheState(%d)", int(s))
	}
}

// BuildFunc computes the vector of one document during a rebuild.
type BuildFunc func(ctx context.Context, docID int) ([]float64, error)

// VectorCache holds one dense vector per document, indexed by document id.
// All vectors share one dimensionality and one statistics snapshot.
type VectorCache struct {
	state   CacheState
	vectors [][]float64
	dims    int
}

func NewVectorCache() *VectorCache {
	return &VectorCache{state: Clean}
}

func (c *VectorCache) MarkDirty() {
	c.state = Dirty
}

func (c *VectorCache) State() CacheState {
	return c.state
}

// Dims is the dimensionality of the cached vectors.
func (c *VectorCache) Dims() int {
	return c.dims
}

func (c *VectorCache) Len() int {
	return len(c.vectors)
}

// Vectors exposes the cached vectors in document-id order. Callers must not
// modify them.
func (c *VectorCache) Vectors() [][]float64 {
	return c.vectors
}

// Vector returns a copy of the cached vector for docID.
func (c *VectorCache) Vector(docID int) ([]float64, bool) {
	if docID < 0 || docID >= len(c.vectors) {
		return nil, false
	}
	out := make([]float64, len(c.vectors[docID]))
	copy(out, c.vectors[docID])
	return out, true
}

// Rebuild recomputes all numDocs vectors at dimensionality dims using up to
// workers goroutines. The cache is replaced and marked Clean only if every
// document succeeds; on error it keeps its previous vectors and stays Dirty.
func (c *VectorCache) Rebuild(ctx context.Context, numDocs, dims, workers int, build BuildFunc) error {
	if workers < 1 {
		workers = 1
	}
	next := make([][]float64, numDocs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for id := 0; id < numDocs; id++ {
		g.Go(func() error {
			vector, err := build(gctx, id)
			if err != nil {
				return fmt.Errorf("building vector for document %d: %w", id, err)
			}
			next[id] = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for id, vector := range next {
		if len(vector) != dims {
			panic(fmt.Sprintf("index: document %d vector has %d dimensions, want %d", id, len(vector), dims))
		}
	}
	c.vectors = next
	c.dims = dims
	c.state = Clean
	return nil
}
