package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufoland/bufosearch/internal/config"
)

func TestTurbopufferSearchByVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bufos/query", r.URL.Path)
		assert.Equal(t, "Bearer tpuf-key", r.Header.Get("Authorization"))

		var req tpufQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.RankBy, 3)
		assert.Equal(t, "vector", req.RankBy[0])
		assert.Equal(t, "ANN", req.RankBy[1])
		assert.Equal(t, 50, req.TopK)
		assert.Equal(t, includeAttributes, req.IncludeAttributes)

		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":   "bufo-happy",
				"dist": 0.4,
				"attributes": map[string]any{
					"url":  "https://cdn.example.com/bufo-happy.png",
					"name": "bufo-happy",
				},
			},
		})
	}))
	defer srv.Close()

	s := NewTurbopufferStoreWithClient("tpuf-key", "bufos", srv.URL, srv.Client())
	results, err := s.SearchByVector(context.Background(), []float32{0.1, 0.2}, 50)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bufo-happy", results[0].ID)
	assert.Equal(t, 0.4, results[0].Score)
	assert.Equal(t, "https://cdn.example.com/bufo-happy.png", results[0].Attributes["url"])
}

func TestTurbopufferSearchByKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tpufQueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.RankBy, 3)
		assert.Equal(t, "name", req.RankBy[0])
		assert.Equal(t, "BM25", req.RankBy[1])
		assert.Equal(t, "happy", req.RankBy[2])

		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "bufo-is-happy", "dist": 7.2, "attributes": map[string]any{"name": "bufo-is-happy"}},
		})
	}))
	defer srv.Close()

	s := NewTurbopufferStoreWithClient("tpuf-key", "bufos", srv.URL, srv.Client())
	results, err := s.SearchByKeyword(context.Background(), "happy", 50)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 7.2, results[0].Score)
}

func TestTurbopufferQueryTooLong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":  "query text is too long (max 1024 characters)",
			"status": "error",
		})
	}))
	defer srv.Close()

	s := NewTurbopufferStoreWithClient("tpuf-key", "bufos", srv.URL, srv.Client())
	_, err := s.SearchByKeyword(context.Background(), "very long query", 50)

	assert.True(t, errors.Is(err, ErrQueryTooLong))
}

func TestTurbopufferAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	s := NewTurbopufferStoreWithClient("tpuf-key", "bufos", srv.URL, srv.Client())
	_, err := s.SearchByVector(context.Background(), []float32{0.1}, 10)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestTurbopufferDropsNonStringAttributes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "a", "dist": 1.0, "attributes": map[string]any{"name": "a", "width": 128}},
		})
	}))
	defer srv.Close()

	s := NewTurbopufferStoreWithClient("k", "bufos", srv.URL, srv.Client())
	results, err := s.SearchByVector(context.Background(), []float32{0.1}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]string{"name": "a"}, results[0].Attributes)
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, err := NewStore(config.StoreConfig{Backend: "pinecone"})
	assert.Error(t, err)
}

func TestNewStore_Turbopuffer(t *testing.T) {
	s, err := NewStore(config.StoreConfig{Backend: "turbopuffer", APIKey: "k", Namespace: "bufos"})
	require.NoError(t, err)
	assert.Equal(t, "turbopuffer", s.Name())
}
