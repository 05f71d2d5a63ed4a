package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultVoyageURL = "https://api.voyageai.com/v1/multimodalembeddings"
	voyageModel      = "voyage-multimodal-3"
)

// VoyageEmbedder calls Voyage AI's multimodal embeddings API. The corpus is
// indexed with early-fused filename+image vectors from the same model, so
// query text must be embedded by it too. Voyage has no Go SDK; this speaks
// the JSON API directly.
type VoyageEmbedder struct {
	client *http.Client
	apiKey string
	url    string
}

func NewVoyageEmbedder(apiKey string) *VoyageEmbedder {
	return &VoyageEmbedder{
		client: http.DefaultClient,
		apiKey: apiKey,
		url:    defaultVoyageURL,
	}
}

// NewVoyageEmbedderWithClient allows injecting the HTTP client and endpoint,
// used by tests.
func NewVoyageEmbedderWithClient(apiKey, url string, client *http.Client) *VoyageEmbedder {
	return &VoyageEmbedder{client: client, apiKey: apiKey, url: url}
}

type voyageContentSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type voyageInput struct {
	Content []voyageContentSegment `json:"content"`
}

type voyageRequest struct {
	Inputs    []voyageInput `json:"inputs"`
	Model     string        `json:"model"`
	InputType string        `json:"input_type,omitempty"`
}

type voyageResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (v *VoyageEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := voyageRequest{
		Inputs: []voyageInput{
			{Content: []voyageContentSegment{{Type: "text", Text: text}}},
		},
		Model:     voyageModel,
		InputType: "query",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed voyageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return parsed.Data[0].Embedding, nil
}

func (v *VoyageEmbedder) Name() string {
	return voyageModel
}
