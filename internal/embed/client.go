// Package embed abstracts the embedding providers that turn query text into
// a fixed-dimension vector. Implementations are selected at construction time
// via the factory, so the search core never depends on a concrete provider.
package embed

import (
	"context"
	"errors"
	"fmt"
)

// Embedder generates an embedding vector for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Name identifies the provider/model for logging.
	Name() string
}

// ErrEmptyResponse is returned when a provider answers successfully but
// carries no embedding data.
var ErrEmptyResponse = errors.New("no embedding returned from provider")

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Body)
}
