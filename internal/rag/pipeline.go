package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rageebridwan/newsmind/provider"
)

// Page is one fetched item of source material handed to ingestion. A failed
// fetch arrives with Success false and is filtered out rather than aborting
// the whole batch.
type Page struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Success bool   `json:"success"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// Pipeline ties the splitter, the embedding provider and the vector index
// into one retrieval unit. Each chat session owns its own Pipeline.
type Pipeline struct {
	splitter *Splitter
	embedder provider.Embedder
	index    *Index
}

// NewPipeline creates a Pipeline around the given embedder. A nil splitter
// gets the default chunking parameters.
func NewPipeline(embedder provider.Embedder, splitter *Splitter) *Pipeline {
	if splitter == nil {
		splitter = NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Pipeline{
		splitter: splitter,
		embedder: embedder,
		index:    NewIndex(),
	}
}

// Ingest filters out failed and empty pages, chunks the rest, embeds every
// chunk and rebuilds the index. Embeddings are computed aside and swapped
// in at the end, so concurrent searches keep seeing the previous corpus
// until the rebuild completes.
func (p *Pipeline) Ingest(ctx context.Context, pages []Page) (IngestReport, error) {
	if len(pages) == 0 {
		return IngestReport{}, ErrEmptyInput
	}

	var docs []Document
	for _, pg := range pages {
		if !pg.Success || strings.TrimSpace(pg.Content) == "" {
			continue
		}
		docs = append(docs, Document{
			Content:  pg.Content,
			Metadata: Metadata{Source: pg.Source, URL: pg.URL, Title: pg.Title},
		})
	}
	if len(docs) == 0 {
		return IngestReport{}, ErrNoValidContent
	}

	chunks, err := p.splitter.Split(docs)
	if err != nil {
		return IngestReport{}, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := p.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return IngestReport{}, fmt.Errorf("%w: %w", ErrEmbeddingService, err)
	}

	if err := p.index.Build(chunks, vectors); err != nil {
		return IngestReport{}, err
	}
	return IngestReport{Documents: len(docs), Chunks: len(chunks)}, nil
}

// Retrieve embeds the query and returns the k nearest chunks.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) ([]Hit, error) {
	if !p.index.Built() {
		return nil, ErrIndexNotBuilt
	}
	vecs, err := p.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingService, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: got %d embeddings for one query", ErrEmbeddingService, len(vecs))
	}
	return p.index.Search(vecs[0], k)
}

// GetContext retrieves the k nearest chunks and assembles them into the
// numbered context block with its deduplicated source list.
func (p *Pipeline) GetContext(ctx context.Context, query string, k int) (RetrievalResult, error) {
	hits, err := p.Retrieve(ctx, query, k)
	if err != nil {
		return RetrievalResult{}, err
	}
	return BuildContext(hits), nil
}

// AllSources lists every distinct source in the corpus, in first-ingested
// order, with the title and URL of that source's first chunk.
func (p *Pipeline) AllSources() []Source {
	var out []Source
	seen := make(map[string]bool)
	for _, c := range p.index.Chunks() {
		if seen[c.Metadata.Source] {
			continue
		}
		seen[c.Metadata.Source] = true
		out = append(out, Source{Source: c.Metadata.Source, Title: c.Metadata.Title, URL: c.Metadata.URL})
	}
	return out
}

// Chunks returns the indexed corpus in insertion order.
func (p *Pipeline) Chunks() []Chunk {
	return p.index.Chunks()
}

// URLs lists the distinct page URLs in the corpus, in first-ingested order.
func (p *Pipeline) URLs() []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range p.index.Chunks() {
		u := c.Metadata.URL
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// ChunksBySource returns up to n chunks from the named source in corpus
// order; n <= 0 returns all of them.
func (p *Pipeline) ChunksBySource(name string, n int) []Chunk {
	var out []Chunk
	for _, c := range p.index.Chunks() {
		if c.Metadata.Source != name {
			continue
		}
		out = append(out, c)
		if n > 0 && len(out) >= n {
			break
		}
	}
	return out
}

// FirstChunks returns the first n chunks of the corpus.
func (p *Pipeline) FirstChunks(n int) []Chunk {
	chunks := p.index.Chunks()
	if n < 0 {
		n = 0
	}
	if n > len(chunks) {
		n = len(chunks)
	}
	return chunks[:n]
}

// ChunkCount returns the number of indexed chunks.
func (p *Pipeline) ChunkCount() int {
	return p.index.Len()
}

// Ready reports whether the pipeline has ingested a corpus.
func (p *Pipeline) Ready() bool {
	return p.index.Built()
}
