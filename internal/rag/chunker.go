package rag

import "strings"

// Metadata identifies the origin of a document. It travels unchanged onto
// every chunk split from that document.
type Metadata struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// Document is one successfully fetched page ready for splitting.
type Document struct {
	Content  string
	Metadata Metadata
}

// Chunk is a bounded contiguous span of a document's text tagged with the
// parent document's metadata.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separators are tried coarsest first; a finer separator is used only for
// segments the coarser one could not bring under the size limit. The final
// empty separator splits between characters.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts document text into chunks of at most chunkSize bytes with
// adjacent chunks sharing up to overlap bytes.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter returns a Splitter, falling back to the default size and
// overlap when given out-of-range values.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split chunks every document, preserving in-document order and metadata.
// It returns ErrEmptyInput when documents is empty and ErrNoValidContent
// when every document is blank after trimming.
func (s *Splitter) Split(documents []Document) ([]Chunk, error) {
	if len(documents) == 0 {
		return nil, ErrEmptyInput
	}
	var chunks []Chunk
	valid := false
	for _, doc := range documents {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		valid = true
		for _, part := range s.splitText(doc.Content, separators) {
			chunks = append(chunks, Chunk{Content: part, Metadata: doc.Metadata})
		}
	}
	if !valid {
		return nil, ErrNoValidContent
	}
	return chunks, nil
}

// splitText splits text on the first separator present in it, merges the
// resulting parts back into size-bounded chunks, and recurses with the
// remaining separators for any part still over the limit. A part that cannot
// be split further is emitted whole, never truncated.
func (s *Splitter) splitText(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, cand := range seps {
		if cand == "" || strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}

	var out []string
	var good []string
	for _, part := range splitOn(text, sep) {
		if len(part) < s.chunkSize {
			good = append(good, part)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, part)
		} else {
			out = append(out, s.splitText(part, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, sep)...)
	}
	return out
}

// merge greedily packs parts into chunks up to chunkSize, re-inserting the
// separator between parts. When a chunk closes, parts totalling at most
// overlap bytes are carried into the next chunk.
func (s *Splitter) merge(parts []string, sep string) []string {
	sepLen := len(sep)
	var docs []string
	var current []string
	total := 0

	over := func(n int) bool {
		extra := 0
		if len(current) > 0 {
			extra = sepLen
		}
		return total+n+extra > s.chunkSize
	}

	for _, p := range parts {
		pl := len(p)
		if over(pl) && len(current) > 0 {
			if doc := joinParts(current, sep); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (over(pl) && total > 0) {
				head := len(current[0])
				if len(current) > 1 {
					head += sepLen
				}
				total -= head
				current = current[1:]
			}
		}
		current = append(current, p)
		total += pl
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := joinParts(current, sep); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitOn splits on sep, dropping empty parts. The empty separator splits
// into individual characters.
func splitOn(text, sep string) []string {
	if sep == "" {
		parts := make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	var parts []string
	for _, p := range strings.Split(text, sep) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func joinParts(parts []string, sep string) string {
	return strings.TrimSpace(strings.Join(parts, sep))
}
