// Package core implements the hybrid retrieval engine: it sequences the
// embedding and search backends, normalizes and fuses their scores, applies
// the content filter, and shapes the final ranked response.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bufoland/bufosearch/internal/core/filter"
	"github.com/bufoland/bufosearch/internal/core/scoring"
	"github.com/bufoland/bufosearch/internal/embed"
	"github.com/bufoland/bufosearch/internal/store"
)

var (
	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrInvalidQuery marks user input rejected by validation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingFailed marks a failure of the embedding provider.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrSearchFailed marks a transport or API failure on either search
	// call. Query-too-long is not one of these; it propagates as
	// store.ErrQueryTooLong so callers can surface it as correctable.
	ErrSearchFailed = errors.New("search backend failed")
)

// Query is one search request. Immutable once bound; it fully determines the
// cache fingerprint.
type Query struct {
	Text           string
	TopK           int
	Alpha          float64
	FamilyFriendly bool
	Exclude        string
	Include        string
}

// MaxTopK bounds the page size. The over-fetch factor multiplies TopK on
// every backend call, so an unbounded TopK would over-fetch proportionally.
const MaxTopK = 100

// Validate rejects queries the backends should never see.
func (q Query) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("%w: query text must not be empty", ErrInvalidQuery)
	}
	if q.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidQuery)
	}
	if q.TopK > MaxTopK {
		return fmt.Errorf("%w: top_k must not exceed %d", ErrInvalidQuery, MaxTopK)
	}
	if q.Alpha < 0.0 || q.Alpha > 1.0 {
		return fmt.Errorf("%w: alpha must be in [0,1]", ErrInvalidQuery)
	}
	return nil
}

// Result is one ranked, admissible document.
type Result struct {
	ID    string  `json:"id"`
	URL   string  `json:"url"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Response is the ordered, filtered, truncated result list.
type Response struct {
	Results []Result `json:"results"`
}

// Searcher orchestrates one search request end to end. It holds only
// long-lived client handles; requests share no mutable state.
type Searcher struct {
	embedder  embed.Embedder
	store     store.VectorStore
	minScore  float64
	overfetch int
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinScore overrides the fused-score floor.
func WithMinScore(minScore float64) Option {
	return func(s *Searcher) {
		s.minScore = minScore
	}
}

// WithOverfetchFactor overrides how many extra candidates are requested per
// backend call to compensate for post-fusion filtering.
func WithOverfetchFactor(factor int) Option {
	return func(s *Searcher) {
		if factor > 0 {
			s.overfetch = factor
		}
	}
}

// NewSearcher creates a searcher over the given backends.
func NewSearcher(embedder embed.Embedder, vectorStore store.VectorStore, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectorStore == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		embedder:  embedder,
		store:     vectorStore,
		minScore:  0.001,
		overfetch: 5,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search runs the full pipeline: embed the query, run both search modes
// concurrently, normalize and fuse the scores, filter, and truncate to TopK.
// Filtering happens before truncation so a full page of admissible results
// is returned whenever enough exist further down the fused ranking.
func (s *Searcher) Search(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	embedding, err := s.embedder.Embed(ctx, q.Text)
	if err != nil {
		s.logger.Error("embedding generation failed", "query", q.Text, "provider", s.embedder.Name(), "err", err)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	s.logger.Info("embedding generated", "query", q.Text, "dim", len(embedding))

	// Over-fetch so post-fusion filtering still leaves a full page.
	searchTopK := q.TopK * s.overfetch

	var vecResults, kwResults []store.RawResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.store.SearchByVector(gctx, embedding, searchTopK)
		if err != nil {
			s.logger.Error("vector search failed", "query", q.Text, "err", err)
			return fmt.Errorf("%w: vector: %v", ErrSearchFailed, err)
		}
		vecResults = r
		return nil
	})
	g.Go(func() error {
		r, err := s.store.SearchByKeyword(gctx, q.Text, searchTopK)
		if err != nil {
			s.logger.Error("keyword search failed", "query", q.Text, "err", err)
			if errors.Is(err, store.ErrQueryTooLong) {
				return err
			}
			return fmt.Errorf("%w: keyword: %v", ErrSearchFailed, err)
		}
		kwResults = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("backend searches completed",
		"query", q.Text, "vector_results", len(vecResults), "keyword_results", len(kwResults))

	semantic := make(map[string]float64, len(vecResults))
	for _, r := range vecResults {
		semantic[r.ID] = scoring.ToSimilarity(r.Score)
	}

	kwScored := make([]scoring.Scored, 0, len(kwResults))
	for _, r := range kwResults {
		kwScored = append(kwScored, scoring.Scored{ID: r.ID, Score: r.Score})
	}
	keyword := scoring.NormalizeMaxScaled(kwScored)

	fused := scoring.Fuse(semantic, keyword, scoring.Config{Alpha: q.Alpha, MinScore: s.minScore})

	// Display attributes come from whichever backend returned the id first,
	// semantic set first. Both backends index the same documents.
	attrs := make(map[string]store.RawResult, len(vecResults)+len(kwResults))
	for _, r := range vecResults {
		if _, ok := attrs[r.ID]; !ok {
			attrs[r.ID] = r
		}
	}
	for _, r := range kwResults {
		if _, ok := attrs[r.ID]; !ok {
			attrs[r.ID] = r
		}
	}

	f := filter.New(q.FamilyFriendly, q.Exclude, q.Include, s.logger)

	results := make([]Result, 0, q.TopK)
	for _, cand := range fused {
		if len(results) == q.TopK {
			break
		}
		raw := attrs[cand.ID]
		name := raw.Attributes["name"]
		if name == "" {
			name = cand.ID
		}
		if !f.Admits(name) {
			continue
		}
		results = append(results, Result{
			ID:    cand.ID,
			URL:   raw.Attributes["url"],
			Name:  name,
			Score: cand.Score,
		})
	}

	s.logger.Info("search completed",
		"query", q.Text, "candidates", len(fused), "results", len(results), "alpha", q.Alpha)

	return &Response{Results: results}, nil
}
