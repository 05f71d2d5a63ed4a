package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Cypher for the two search modes. The image corpus is modeled as
// (:Image {id, url, name, filename, embedding}) with a vector index over
// embedding and a text index over name.
const (
	memgraphVectorQuery = `
		CALL vector_search.search("image_embeddings", $top_k, $embedding)
		YIELD node, distance
		RETURN node.id AS id, distance AS score,
		       node.url AS url, node.name AS name, node.filename AS filename
	`
	memgraphKeywordQuery = `
		CALL text_search.search_all("image_names", $query)
		YIELD node, score
		RETURN node.id AS id, score AS score,
		       node.url AS url, node.name AS name, node.filename AS filename
		ORDER BY score DESC
		LIMIT $top_k
	`
)

// memgraphRunner executes one Cypher query and returns the eager result.
// The seam lets tests drive the row mapping without a live server.
type memgraphRunner func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error)

// MemgraphStore serves both search modes from a Memgraph instance holding the
// same indexed documents. Used for self-hosted deployments where an external
// vector service is not an option.
type MemgraphStore struct {
	driver neo4j.DriverWithContext
	runner memgraphRunner
}

func NewMemgraphStore(uri, username, password string) (*MemgraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	return NewMemgraphStoreWithDriver(driver), nil
}

// NewMemgraphStoreWithDriver wraps an already-connected driver, used by tests
// and by callers that manage the connection themselves.
func NewMemgraphStoreWithDriver(driver neo4j.DriverWithContext) *MemgraphStore {
	s := &MemgraphStore{driver: driver}
	s.runner = func(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
		return neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer)
	}
	return s
}

func (s *MemgraphStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *MemgraphStore) run(ctx context.Context, cypher string, params map[string]any) ([]RawResult, error) {
	result, err := s.runner(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	results := make([]RawResult, 0, len(result.Records))
	for _, record := range result.Records {
		id, _ := record.Get("id")
		score, _ := record.Get("score")

		idStr, ok := id.(string)
		if !ok {
			continue
		}
		scoreVal, ok := numericScore(score)
		if !ok {
			continue
		}

		attrs := make(map[string]string, 3)
		for _, key := range includeAttributes {
			if v, found := record.Get(key); found {
				if str, ok := v.(string); ok {
					attrs[key] = str
				}
			}
		}

		results = append(results, RawResult{ID: idStr, Score: scoreVal, Attributes: attrs})
	}
	return results, nil
}

// numericScore accepts both value types the driver produces for scores:
// float64 for distances and int64 for integer text-search scores.
func numericScore(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (s *MemgraphStore) SearchByVector(ctx context.Context, embedding []float32, topK int) ([]RawResult, error) {
	return s.run(ctx, memgraphVectorQuery, map[string]any{
		"embedding": embedding,
		"top_k":     topK,
	})
}

func (s *MemgraphStore) SearchByKeyword(ctx context.Context, query string, topK int) ([]RawResult, error) {
	return s.run(ctx, memgraphKeywordQuery, map[string]any{
		"query": query,
		"top_k": topK,
	})
}

func (s *MemgraphStore) Name() string {
	return "memgraph"
}
