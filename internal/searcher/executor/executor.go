package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

type SearchResult struct {
	Query      string       `json:"query"`
	Generation int          `json:"generation"`
	TotalHits  int          `json:"total_hits"`
	Results    []ranker.Hit `json:"results"`
}

type Executor struct {
	engine  *indexer.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(engine *indexer.Engine, m *metrics.Metrics) *Executor {
	return &Executor{
		engine:  engine,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Generation identifies the corpus a result was computed against. It only
// grows, so results keyed by it never outlive an insert.
func (e *Executor) Generation() int {
	return e.engine.TotalDocs()
}

func (e *Executor) Execute(ctx context.Context, query string, limit int) (*SearchResult, error) {
	start := time.Now()
	generation := e.engine.TotalDocs()
	hits, err := e.engine.Search(ctx, query, limit)
	if err != nil {
		e.observe("error", 0, start)
		return nil, err
	}

	resultType := "hit"
	if len(hits) == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, len(hits), start)
	e.logger.Debug("query executed",
		"query", query,
		"limit", limit,
		"returned", len(hits),
		"generation", generation,
	)
	return &SearchResult{
		Query:      query,
		Generation: generation,
		TotalHits:  len(hits),
		Results:    hits,
	}, nil
}

func (e *Executor) observe(resultType string, n int, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(n))
	}
	e.metrics.SearchLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
}
