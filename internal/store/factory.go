package store

import (
	"fmt"
	"strings"

	"github.com/bufoland/bufosearch/internal/config"
)

// NewStore builds the vector store backend named by the configuration.
func NewStore(cfg config.StoreConfig) (VectorStore, error) {
	backend := strings.ToLower(cfg.Backend)

	switch backend {
	case "turbopuffer":
		return NewTurbopufferStore(cfg.APIKey, cfg.Namespace), nil

	case "memgraph":
		uri := cfg.URI
		if uri == "" {
			uri = "bolt://localhost:7687"
		}
		return NewMemgraphStore(uri, cfg.User, cfg.Password)

	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
