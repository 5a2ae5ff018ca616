package server

import (
	"context"
	"errors"
	"sync"

	"github.com/rageebridwan/newsmind/internal/chat"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/session/inmemory"
)

// stubProvider answers every generation with a canned response and embeds
// any text with a fixed vector, so retrieval is deterministic.
type stubProvider struct {
	mu       sync.Mutex
	response string
	genErr   error
	prompts  []string
	fallback []float32
}

func newStubProvider(response string) *stubProvider {
	return &stubProvider{response: response, fallback: []float32{1, 0, 0}}
}

func (s *stubProvider) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.genErr != nil {
		return "", s.genErr
	}
	return s.response, nil
}

func (s *stubProvider) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.fallback
	}
	return out, nil
}

func (s *stubProvider) promptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *stubProvider) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

// stubFetcher serves canned pages; unknown URLs become failure pages.
type stubFetcher struct {
	pages map[string]rag.Page
}

func (s stubFetcher) Exec(_ context.Context, url string) (rag.Page, error) {
	if p, ok := s.pages[url]; ok {
		return p, nil
	}
	return rag.Page{URL: url, Title: "Error", Content: "Failed to scrape: not found", Success: false}, nil
}

func okPage(url, source, title, content string) rag.Page {
	return rag.Page{URL: url, Title: title, Content: content, Source: source, Success: true}
}

// newTestHarness builds a store and engine wired to a stub provider.
func newTestHarness(response string) (*inmemory.Store, *chat.Engine, *stubProvider) {
	p := newStubProvider(response)
	store := inmemory.NewStore(func() *rag.Pipeline {
		return rag.NewPipeline(p, rag.NewSplitter(0, 0))
	})
	engine := chat.NewEngine(p, 5, 3)
	return store, engine, p
}

var errStubDown = errors.New("stub provider down")
