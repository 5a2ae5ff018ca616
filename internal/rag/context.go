package rag

import (
	"fmt"
	"strings"
)

// Source describes one origin of retrieved content.
type Source struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// RetrievalResult is the assembled evidence for one query: the numbered
// context block handed to the language model and the distinct sources that
// contributed to it.
type RetrievalResult struct {
	Context string   `json:"context"`
	Sources []Source `json:"sources"`
}

// BuildContext formats ranked hits into numbered source blocks and collects
// each distinct source once, in first-hit order. No hits yields an empty
// result, not an error.
func BuildContext(hits []Hit) RetrievalResult {
	var parts []string
	var sources []Source
	seen := make(map[Source]bool)
	for i, h := range hits {
		m := h.Chunk.Metadata
		parts = append(parts, fmt.Sprintf("[Source %d: %s - %s]\n%s\n", i+1, m.Source, m.Title, h.Chunk.Content))
		src := Source{Source: m.Source, Title: m.Title, URL: m.URL}
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return RetrievalResult{Context: strings.Join(parts, "\n"), Sources: sources}
}
