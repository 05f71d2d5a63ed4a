package core

import (
	"context"

	"github.com/bufoland/bufosearch/internal/store"
)

type MockEmbedder struct {
	Vector   []float32
	Err      error
	LastText string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.LastText = text
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

func (m *MockEmbedder) Name() string {
	return "mock-embedder"
}

type MockStore struct {
	VectorResults  []store.RawResult
	KeywordResults []store.RawResult
	VectorErr      error
	KeywordErr     error

	LastVectorTopK  int
	LastKeywordTopK int
	LastKeywordText string
}

func (m *MockStore) SearchByVector(ctx context.Context, embedding []float32, topK int) ([]store.RawResult, error) {
	m.LastVectorTopK = topK
	if m.VectorErr != nil {
		return nil, m.VectorErr
	}
	return m.VectorResults, nil
}

func (m *MockStore) SearchByKeyword(ctx context.Context, query string, topK int) ([]store.RawResult, error) {
	m.LastKeywordTopK = topK
	m.LastKeywordText = query
	if m.KeywordErr != nil {
		return nil, m.KeywordErr
	}
	return m.KeywordResults, nil
}

func (m *MockStore) Name() string {
	return "mock-store"
}
