package rag

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Index is a brute-force cosine-similarity index over chunk embeddings,
// sized for per-session corpora. Build replaces the whole corpus in one
// swap, so readers never observe a partial rebuild.
type Index struct {
	mu      sync.RWMutex
	chunks  []Chunk
	vectors [][]float32
	dims    int
	built   bool
}

// Hit is one search result: the chunk, its position in the ingested corpus
// and its similarity score.
type Hit struct {
	Chunk Chunk
	Pos   int
	Score float64
}

func NewIndex() *Index {
	return &Index{}
}

// Build validates the embeddings and replaces the index contents. Every
// vector must be non-empty and share one dimension; a mismatch reports
// ErrEmbeddingService and leaves the previous contents untouched.
func (ix *Index) Build(chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbeddingService, len(vectors), len(chunks))
	}
	dims := 0
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: empty embedding for chunk %d", ErrEmbeddingService, i)
		}
		if dims == 0 {
			dims = len(v)
		}
		if len(v) != dims {
			return fmt.Errorf("%w: dimension mismatch at chunk %d: %d != %d", ErrEmbeddingService, i, len(v), dims)
		}
	}

	ix.mu.Lock()
	ix.chunks = chunks
	ix.vectors = vectors
	ix.dims = dims
	ix.built = true
	ix.mu.Unlock()
	return nil
}

// Search returns up to k chunks ranked by descending cosine similarity to
// the query vector. Equal scores keep corpus order. A k larger than the
// corpus is clamped; k <= 0 returns no hits. Searching before the first
// Build reports ErrIndexNotBuilt.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return nil, ErrIndexNotBuilt
	}
	if k <= 0 {
		return nil, nil
	}
	if k > len(ix.chunks) {
		k = len(ix.chunks)
	}

	type scored struct {
		pos   int
		score float64
	}
	scoreds := make([]scored, len(ix.vectors))
	for i, v := range ix.vectors {
		scoreds[i] = scored{pos: i, score: cosine(query, v)}
	}
	sort.SliceStable(scoreds, func(i, j int) bool { return scoreds[i].score > scoreds[j].score })

	out := make([]Hit, k)
	for i := 0; i < k; i++ {
		out[i] = Hit{Chunk: ix.chunks[scoreds[i].pos], Pos: scoreds[i].pos, Score: scoreds[i].score}
	}
	return out, nil
}

// Chunks returns the indexed corpus in insertion order, nil before the
// first Build.
func (ix *Index) Chunks() []Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.chunks
}

// Built reports whether a corpus has been ingested.
func (ix *Index) Built() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.built
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Dims returns the embedding dimension of the current corpus, 0 before the
// first Build.
func (ix *Index) Dims() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dims
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
