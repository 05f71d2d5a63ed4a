package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bufoland/bufosearch/internal/config"
	"github.com/bufoland/bufosearch/internal/core"
	"github.com/bufoland/bufosearch/internal/embed"
	"github.com/bufoland/bufosearch/internal/store"
)

// Server wires the search core to the HTTP surface.
type Server struct {
	Searcher *core.Searcher
	cfg      *config.Config
	logger   *slog.Logger
}

// New constructs the backends named by the configuration and returns a ready
// server.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	embedder, err := embed.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	vectorStore, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	searcher, err := core.NewSearcher(embedder, vectorStore,
		core.WithLogger(logger),
		core.WithMinScore(cfg.Search.MinScore),
		core.WithOverfetchFactor(cfg.Search.OverfetchFactor),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("backends initialized",
		"embedder", embedder.Name(), "store", vectorStore.Name())

	return &Server{Searcher: searcher, cfg: cfg, logger: logger}, nil
}

// NewWithSearcher builds a server around an existing searcher, used by tests.
func NewWithSearcher(searcher *core.Searcher, cfg *config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Searcher: searcher, cfg: cfg, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.Default())

	api := r.Group("/api")
	api.Use(rateLimiter(s.cfg.Server.RequestsPerMinute))
	api.POST("/search", s.SearchPost)
	api.GET("/search", s.SearchGet)
	api.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	if s.cfg.Server.StaticDir != "" {
		r.StaticFile("/", filepath.Join(s.cfg.Server.StaticDir, "index.html"))
		r.Static("/static", s.cfg.Server.StaticDir)
	}

	return r
}

// searchRequest is the POST body. Pointer fields distinguish "absent" from
// zero so defaults apply only when a field is omitted.
type searchRequest struct {
	Query          string   `json:"query"`
	TopK           *int     `json:"top_k"`
	Alpha          *float64 `json:"alpha"`
	FamilyFriendly *bool    `json:"family_friendly"`
	Exclude        string   `json:"exclude"`
	Include        string   `json:"include"`
}

func (s *Server) queryDefaults() core.Query {
	return core.Query{
		TopK:           10,
		Alpha:          s.cfg.Search.DefaultAlpha,
		FamilyFriendly: true,
	}
}

func (s *Server) SearchPost(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	q := s.queryDefaults()
	q.Text = req.Query
	if req.TopK != nil {
		q.TopK = *req.TopK
	}
	if req.Alpha != nil {
		q.Alpha = *req.Alpha
	}
	if req.FamilyFriendly != nil {
		q.FamilyFriendly = *req.FamilyFriendly
	}
	q.Exclude = req.Exclude
	q.Include = req.Include

	resp, err := s.Searcher.Search(c.Request.Context(), q)
	if err != nil {
		s.writeSearchError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchGet serves shareable URLs and supports conditional responses: the
// query fingerprint acts as the ETag, and a matching If-None-Match
// short-circuits to 304 before any backend call.
func (s *Server) SearchGet(c *gin.Context) {
	q, err := s.bindGetQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reject invalid queries before the conditional check; a bad query must
	// not turn into a 304 just because the client cached its fingerprint.
	if err := q.Validate(); err != nil {
		s.writeSearchError(c, err)
		return
	}

	etag := core.Fingerprint(q)
	if c.GetHeader("If-None-Match") == etag {
		c.Header("ETag", etag)
		c.Status(http.StatusNotModified)
		return
	}

	resp, err := s.Searcher.Search(c.Request.Context(), q)
	if err != nil {
		s.writeSearchError(c, err)
		return
	}

	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, resp)
}

func (s *Server) bindGetQuery(c *gin.Context) (core.Query, error) {
	q := s.queryDefaults()
	q.Text = c.Query("query")
	q.Exclude = c.Query("exclude")
	q.Include = c.Query("include")

	if v := c.Query("top_k"); v != "" {
		topK, err := strconv.Atoi(v)
		if err != nil {
			return q, errors.New("top_k must be an integer")
		}
		q.TopK = topK
	}
	if v := c.Query("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, errors.New("alpha must be a number")
		}
		q.Alpha = alpha
	}
	if v := c.Query("family_friendly"); v != "" {
		ff, err := strconv.ParseBool(v)
		if err != nil {
			return q, errors.New("family_friendly must be a boolean")
		}
		q.FamilyFriendly = ff
	}
	return q, nil
}

func (s *Server) writeSearchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrQueryTooLong):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "search query is too long (max 1024 characters for text search). try a shorter query.",
		})
	default:
		s.logger.Error("search request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
	}
}
