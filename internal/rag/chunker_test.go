package rag

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		docs []Document
		want error
	}{
		{name: "no documents", docs: nil, want: ErrEmptyInput},
		{name: "empty slice", docs: []Document{}, want: ErrEmptyInput},
		{name: "all blank", docs: []Document{{Content: "   \n\t  "}, {Content: ""}}, want: ErrNoValidContent},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
			if _, err := s.Split(tc.docs); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSplitSkipsBlankDocuments(t *testing.T) {
	t.Parallel()
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	docs := []Document{
		{Content: "  \n  ", Metadata: Metadata{Source: "blank.com"}},
		{Content: "useful text", Metadata: Metadata{Source: "real.com"}},
	}
	chunks, err := s.Split(docs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata.Source != "real.com" {
		t.Fatalf("expected metadata from the non-blank document, got %q", chunks[0].Metadata.Source)
	}
}

func TestSplitSmallDocumentSingleChunk(t *testing.T) {
	t.Parallel()
	s := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	text := "First sentence here. Second sentence there. Third one."
	chunks, err := s.Split([]Document{{Content: text, Metadata: Metadata{Source: "news.com", Title: "T"}}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != text {
		t.Fatalf("expected content preserved, got %q", chunks[0].Content)
	}
}

func TestSplitParagraphs(t *testing.T) {
	t.Parallel()
	s := NewSplitter(40, 10)
	text := "alpha beta gamma\n\ndelta epsilon zeta\n\neta theta iota"
	chunks, err := s.Split([]Document{{Content: text}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "alpha beta gamma\n\ndelta epsilon zeta" {
		t.Fatalf("unexpected first chunk: %q", chunks[0].Content)
	}
	if chunks[1].Content != "eta theta iota" {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
	for i, c := range chunks {
		if len(c.Content) > 40 {
			t.Fatalf("chunk %d exceeds size limit: %d bytes", i, len(c.Content))
		}
	}
}

func TestSplitOverlapCarriesTrailingParts(t *testing.T) {
	t.Parallel()
	s := NewSplitter(20, 8)
	chunks, err := s.Split([]Document{{Content: "one two three four five six"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "one two three four" {
		t.Fatalf("unexpected first chunk: %q", chunks[0].Content)
	}
	if chunks[1].Content != "four five six" {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
	if !strings.HasSuffix(chunks[0].Content, "four") || !strings.HasPrefix(chunks[1].Content, "four") {
		t.Fatalf("expected adjacent chunks to share overlap, got %q / %q", chunks[0].Content, chunks[1].Content)
	}
}

func TestSplitReconstructsWordSequence(t *testing.T) {
	t.Parallel()
	s := NewSplitter(25, 0)
	text := "alpha beta gamma delta\n\nepsilon zeta eta theta iota kappa\nlambda mu nu xi omicron pi rho"
	chunks, err := s.Split([]Document{{Content: text}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the text to split, got %d chunks", len(chunks))
	}

	var words []string
	for _, c := range chunks {
		words = append(words, strings.Fields(c.Content)...)
	}
	got := strings.Join(words, " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Fatalf("expected chunks to preserve the word sequence\nwant %q\ngot  %q", want, got)
	}
}

func TestSplitLongRunFallsBackToCharacters(t *testing.T) {
	t.Parallel()
	s := NewSplitter(100, 20)
	chunks, err := s.Split([]Document{{Content: strings.Repeat("a", 250)}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantLens := []int{100, 100, 90}
	for i, c := range chunks {
		if len(c.Content) != wantLens[i] {
			t.Fatalf("chunk %d: expected %d bytes, got %d", i, wantLens[i], len(c.Content))
		}
		if strings.Trim(c.Content, "a") != "" {
			t.Fatalf("chunk %d: unexpected content %q", i, c.Content)
		}
	}
}

func TestSplitPreservesDocumentOrderAndMetadata(t *testing.T) {
	t.Parallel()
	s := NewSplitter(30, 5)
	docs := []Document{
		{Content: "first doc part one\n\nfirst doc part two", Metadata: Metadata{Source: "a.com", URL: "https://a.com/x", Title: "A"}},
		{Content: "second doc text", Metadata: Metadata{Source: "b.com", URL: "https://b.com/y", Title: "B"}},
	}
	chunks, err := s.Split(docs)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	sawB := false
	for _, c := range chunks {
		switch c.Metadata.Source {
		case "a.com":
			if sawB {
				t.Fatalf("chunk from a.com after b.com, order not preserved")
			}
			if c.Metadata.Title != "A" || c.Metadata.URL != "https://a.com/x" {
				t.Fatalf("metadata not carried onto chunk: %+v", c.Metadata)
			}
		case "b.com":
			sawB = true
		default:
			t.Fatalf("unexpected source %q", c.Metadata.Source)
		}
	}
	if !sawB {
		t.Fatalf("expected chunks from second document")
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	t.Parallel()
	s := NewSplitter(0, -1)
	if s.chunkSize != DefaultChunkSize || s.overlap != DefaultChunkOverlap {
		t.Fatalf("expected defaults %d/%d, got %d/%d", DefaultChunkSize, DefaultChunkOverlap, s.chunkSize, s.overlap)
	}
	s = NewSplitter(100, 150)
	if s.overlap >= s.chunkSize {
		t.Fatalf("expected overlap below chunk size, got %d/%d", s.overlap, s.chunkSize)
	}
}
