package embed

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

func TestVoyageEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req voyageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, voyageModel, req.Model)
		assert.Equal(t, "query", req.InputType)
		require.Len(t, req.Inputs, 1)
		require.Len(t, req.Inputs[0].Content, 1)
		assert.Equal(t, "happy bufo", req.Inputs[0].Content[0].Text)

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer srv.Close()

	e := NewVoyageEmbedderWithClient("test-key", srv.URL, srv.Client())
	vec, err := e.Embed(context.Background(), "happy bufo")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestVoyageEmbed_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	e := NewVoyageEmbedderWithClient("bad-key", srv.URL, srv.Client())
	_, err := e.Embed(context.Background(), "anything")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid api key")
}

func TestVoyageEmbed_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	e := NewVoyageEmbedderWithClient("test-key", srv.URL, srv.Client())
	_, err := e.Embed(context.Background(), "anything")

	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "watsonx"})
	assert.Error(t, err)
}

func TestNewEmbedder_Voyage(t *testing.T) {
	e, err := NewEmbedder(context.Background(), config.EmbeddingConfig{Provider: "voyage", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, voyageModel, e.Name())
}
