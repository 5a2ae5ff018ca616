package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve"

	"github.com/rageebridwan/newsmind/internal/memory"
	"github.com/rageebridwan/newsmind/internal/rag"
)

// Store manages session lifetimes.
type Store interface {
	EnsureSession(id string, ttl time.Duration) (*Session, error)
	GetSession(id string) (*Session, error)
	Delete(id string)
	PurgeExpired() int
}

// Session is one user's working set: the retrieval pipeline over its
// ingested corpus, the conversation history and a keyword index mirroring
// that corpus for hybrid search.
type Session struct {
	id        string
	expiresAt time.Time
	pipeline  *rag.Pipeline
	memory    *memory.Buffer
	keyword   bleve.Index
	meta      map[string]rag.Chunk
	mu        sync.RWMutex
}

const rrfK = 60 // reciprocal-rank-fusion constant

// SearchHit is one ranked result from keyword, vector or hybrid search.
type SearchHit struct {
	DocID   string  `json:"doc_id"`
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

// keywordDoc is the shape indexed into bleve.
type keywordDoc struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	Title   string `json:"title"`
}

func New(id string, ttl time.Duration, pipeline *rag.Pipeline) (*Session, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Session{
		id:        id,
		expiresAt: time.Now().Add(ttl),
		pipeline:  pipeline,
		memory:    memory.NewBuffer(),
		keyword:   idx,
		meta:      make(map[string]rag.Chunk),
	}, nil
}

func (s *Session) ID() string              { return s.id }
func (s *Session) Pipeline() *rag.Pipeline { return s.pipeline }
func (s *Session) Memory() *memory.Buffer  { return s.memory }

func (s *Session) Expire(ttl time.Duration) {
	s.mu.Lock()
	s.expiresAt = time.Now().Add(ttl)
	s.mu.Unlock()
}

func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().After(s.expiresAt)
}

// Ingest feeds pages through the retrieval pipeline and mirrors the
// resulting chunks into the keyword index.
func (s *Session) Ingest(ctx context.Context, pages []rag.Page) (rag.IngestReport, error) {
	report, err := s.pipeline.Ingest(ctx, pages)
	if err != nil {
		return report, err
	}
	if err := s.reindex(); err != nil {
		return report, fmt.Errorf("failed to rebuild keyword index: %w", err)
	}
	return report, nil
}

// reindex rebuilds the keyword index from the pipeline's current corpus
// and swaps it in whole.
func (s *Session) reindex() error {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	meta := make(map[string]rag.Chunk)
	for i, c := range s.pipeline.Chunks() {
		id := chunkID(i)
		meta[id] = c
		doc := keywordDoc{Content: c.Content, Source: c.Metadata.Source, Title: c.Metadata.Title}
		if err := idx.Index(id, doc); err != nil {
			return err
		}
	}

	s.mu.Lock()
	old := s.keyword
	s.keyword = idx
	s.meta = meta
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// KeywordSearch runs a BM25 query against the keyword index.
func (s *Session) KeywordSearch(q string, k int) ([]SearchHit, error) {
	if k <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	idx := s.keyword
	s.mu.RUnlock()

	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	res, err := idx.Search(searchReq)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []SearchHit
	for i, hit := range res.Hits {
		c, ok := s.meta[hit.ID]
		if !ok {
			continue
		}
		out = append(out, SearchHit{
			DocID: hit.ID, URL: c.Metadata.URL, Title: c.Metadata.Title, Source: c.Metadata.Source,
			Snippet: snippet(c.Content), Score: hit.Score, Rank: i + 1,
		})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// VectorSearch embeds the query and ranks chunks by cosine similarity.
func (s *Session) VectorSearch(ctx context.Context, q string, k int) ([]SearchHit, error) {
	hits, err := s.pipeline.Retrieve(ctx, q, k)
	if err != nil {
		return nil, err
	}
	var out []SearchHit
	for i, h := range hits {
		out = append(out, SearchHit{
			DocID: chunkID(h.Pos), URL: h.Chunk.Metadata.URL, Title: h.Chunk.Metadata.Title, Source: h.Chunk.Metadata.Source,
			Snippet: snippet(h.Chunk.Content), Score: h.Score, Rank: i + 1,
		})
	}
	return out, nil
}

// HybridSearch fuses keyword and vector rankings for one query.
func (s *Session) HybridSearch(ctx context.Context, q string, k int) ([]SearchHit, error) {
	kw, err := s.KeywordSearch(q, k)
	if err != nil {
		return nil, err
	}
	vec, err := s.VectorSearch(ctx, q, k)
	if err != nil {
		return nil, err
	}
	return s.FuseRRF(kw, vec, k), nil
}

// FuseRRF merges two ranked lists with reciprocal-rank fusion. Equal fused
// scores break on document ID so results stay stable across runs.
func (s *Session) FuseRRF(a, b []SearchHit, k int) []SearchHit {
	type agg struct {
		item  SearchHit
		score float64
	}
	m := map[string]*agg{}
	add := func(list []SearchHit) {
		for _, h := range list {
			x, ok := m[h.DocID]
			if !ok {
				x = &agg{item: h}
				m[h.DocID] = x
			}
			x.score += 1.0 / float64(rrfK+h.Rank)
		}
	}
	add(a)
	add(b)

	items := make([]agg, 0, len(m))
	for _, v := range m {
		items = append(items, *v)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].item.DocID < items[j].item.DocID
	})

	if k < 0 {
		k = 0
	}
	if k > len(items) {
		k = len(items)
	}
	out := make([]SearchHit, 0, k)
	for i := 0; i < k; i++ {
		h := items[i].item
		h.Score = items[i].score
		h.Rank = i + 1
		out = append(out, h)
	}
	return out
}

func chunkID(i int) string { return fmt.Sprintf("c%06d", i) }

func snippet(s string) string {
	if len(s) <= 300 {
		return s
	}
	return s[:300] + "…"
}
