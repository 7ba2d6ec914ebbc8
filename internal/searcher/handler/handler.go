package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

const maxDocumentBytes = 1 << 20

type SearchExecutor interface {
	Execute(ctx context.Context, query string, limit int) (*executor.SearchResult, error)
	Generation() int
}

// Index is the write and introspection side of the engine.
type Index interface {
	Insert(ctx context.Context, text string) (int, error)
	AllDocuments(ctx context.Context) ([]string, error)
	Stats() indexer.Stats
}

type Handler struct {
	executor     SearchExecutor
	index        Index
	cache        *cache.QueryCache
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(exec SearchExecutor, idx Index, queryCache *cache.QueryCache, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		executor:     exec,
		index:        idx,
		cache:        queryCache,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/documents", h.Insert)
	mux.HandleFunc("GET /api/v1/documents", h.Documents)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *executor.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, h.executor.Generation(), func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, query, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, query, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}
	if cacheHit && h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
	}

	log.Info("search completed",
		"query", query,
		"limit", limit,
		"returned", len(result.Results),
		"generation", result.Generation,
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// parseLimit maps the limit parameter to a ranker limit: empty means the
// configured default, "all" means unbounded, numbers are capped at the
// configured maximum.
func (h *Handler) parseLimit(raw string) (int, error) {
	switch raw {
	case "":
		return h.defaultLimit, nil
	case "all":
		return ranker.Unlimited, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer or 'all'")
	}
	return min(n, h.maxResults), nil
}

type insertRequest struct {
	Text *string `json:"text"`
}

type insertResponse struct {
	ID int `json:"id"`
}

func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req insertRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Text == nil {
		h.writeError(w, http.StatusBadRequest, "field 'text' is required")
		return
	}

	id, err := h.index.Insert(r.Context(), *req.Text)
	if err != nil {
		log.Error("insert failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "insert failed")
		return
	}
	log.Info("document inserted", "doc_id", id, "bytes", len(*req.Text))
	h.writeJSON(w, http.StatusCreated, insertResponse{ID: id})
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.index.AllDocuments(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("listing documents failed", "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "listing documents failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(docs),
		"documents": docs,
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.index.Stats())
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
