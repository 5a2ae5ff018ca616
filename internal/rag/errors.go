package rag

import "errors"

// Sentinel errors for the retrieval pipeline. Callers distinguish them with
// errors.Is; remote-capability failures wrap the underlying cause as well.
var (
	// ErrEmptyInput is returned when an operation is given no documents at all.
	ErrEmptyInput = errors.New("no documents provided")

	// ErrNoValidContent is returned when every candidate document is unusable
	// (failed fetch or blank content).
	ErrNoValidContent = errors.New("no valid documents to process")

	// ErrIndexNotBuilt is returned when a search runs before any ingestion.
	ErrIndexNotBuilt = errors.New("no documents ingested yet")

	// ErrEmbeddingService is returned when the embedding capability is
	// unreachable or returns malformed vectors.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGenerationService is returned when a language model call fails.
	ErrGenerationService = errors.New("generation service failure")
)
