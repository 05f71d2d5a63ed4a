// Package store abstracts the indexed document backends. A VectorStore
// serves both ranking signals over the same corpus: approximate
// nearest-neighbor search on embedding vectors and BM25-style full-text
// search on document names.
package store

import (
	"context"
	"errors"
	"fmt"
)

// RawResult is one candidate from a single backend call. Score
// interpretation depends on the signal: vector search returns a distance
// (lower is more similar), keyword search returns a relevance (higher is
// more similar). Never mutated after construction.
type RawResult struct {
	ID         string
	Score      float64
	Attributes map[string]string
}

// VectorStore performs both search modes over pre-indexed documents.
type VectorStore interface {
	// SearchByVector runs ANN search with cosine distance.
	SearchByVector(ctx context.Context, embedding []float32, topK int) ([]RawResult, error)
	// SearchByKeyword runs BM25 full-text search over the name field.
	SearchByKeyword(ctx context.Context, query string, topK int) ([]RawResult, error)
	// Name identifies the backend for logging.
	Name() string
}

// ErrQueryTooLong marks a keyword query rejected for exceeding the backend's
// length limit. It is user-correctable and must stay distinguishable from
// transport failures.
var ErrQueryTooLong = errors.New("query too long")

// APIError is a non-2xx answer from a backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Body)
}
