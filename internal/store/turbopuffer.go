package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultTurbopufferBase = "https://api.turbopuffer.com/v1/vectors"

// includeAttributes are the display attributes requested on every query.
var includeAttributes = []string{"url", "name", "filename"}

// TurbopufferStore talks to turbopuffer's hybrid search API. Both search
// modes go through the same namespace query endpoint, differing only in the
// rank_by clause.
type TurbopufferStore struct {
	client    *http.Client
	apiKey    string
	namespace string
	baseURL   string
}

func NewTurbopufferStore(apiKey, namespace string) *TurbopufferStore {
	return &TurbopufferStore{
		client:    http.DefaultClient,
		apiKey:    apiKey,
		namespace: namespace,
		baseURL:   defaultTurbopufferBase,
	}
}

// NewTurbopufferStoreWithClient allows injecting the HTTP client and base
// URL, used by tests.
func NewTurbopufferStoreWithClient(apiKey, namespace, baseURL string, client *http.Client) *TurbopufferStore {
	return &TurbopufferStore{client: client, apiKey: apiKey, namespace: namespace, baseURL: baseURL}
}

type tpufQueryRequest struct {
	RankBy            []any    `json:"rank_by"`
	TopK              int      `json:"top_k"`
	IncludeAttributes []string `json:"include_attributes,omitempty"`
}

type tpufQueryRow struct {
	ID         string         `json:"id"`
	Dist       float64        `json:"dist"`
	Attributes map[string]any `json:"attributes"`
}

type tpufErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

func (s *TurbopufferStore) queryURL() string {
	return fmt.Sprintf("%s/%s/query", s.baseURL, s.namespace)
}

func (s *TurbopufferStore) execute(ctx context.Context, request tpufQueryRequest) ([]RawResult, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.queryURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp tpufErrorResponse
		if json.Unmarshal(body, &errResp) == nil &&
			strings.Contains(errResp.Error, "too long") && strings.Contains(errResp.Error, "max 1024") {
			return nil, fmt.Errorf("%w: %s", ErrQueryTooLong, errResp.Error)
		}
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var rows []tpufQueryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]RawResult, 0, len(rows))
	for _, row := range rows {
		attrs := make(map[string]string, len(row.Attributes))
		for k, v := range row.Attributes {
			if str, ok := v.(string); ok {
				attrs[k] = str
			}
		}
		results = append(results, RawResult{ID: row.ID, Score: row.Dist, Attributes: attrs})
	}
	return results, nil
}

func (s *TurbopufferStore) SearchByVector(ctx context.Context, embedding []float32, topK int) ([]RawResult, error) {
	return s.execute(ctx, tpufQueryRequest{
		RankBy:            []any{"vector", "ANN", embedding},
		TopK:              topK,
		IncludeAttributes: includeAttributes,
	})
}

func (s *TurbopufferStore) SearchByKeyword(ctx context.Context, query string, topK int) ([]RawResult, error) {
	return s.execute(ctx, tpufQueryRequest{
		RankBy:            []any{"name", "BM25", query},
		TopK:              topK,
		IncludeAttributes: includeAttributes,
	})
}

func (s *TurbopufferStore) Name() string {
	return "turbopuffer"
}
