package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

// Engine is a TF-IDF vector-space index over an append-only document store.
//
// Insert takes the write lock and updates store, vocabulary, statistics and
// the cache state together. Search runs under the read lock while the vector
// cache is clean; a dirty cache is rebuilt under the write lock first.
type Engine struct {
	mu       sync.RWMutex
	analyzer tokenizer.Analyzer
	store    store.Store
	vocab    *index.Vocabulary
	stats    *index.Stats
	vectors  *index.VectorCache
	workers  int
	closed   bool
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithAnalyzer overrides the analyzer built from the indexer config.
func WithAnalyzer(a tokenizer.Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine builds an engine over st, which it owns from now on. Documents
// already in st are re-analysed so that vocabulary and statistics match it.
func NewEngine(ctx context.Context, cfg config.IndexerConfig, st store.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   st,
		vocab:   index.NewVocabulary(),
		stats:   index.NewStats(),
		vectors: index.NewVectorCache(),
		workers: cfg.RebuildWorkers,
		logger:  slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.analyzer == nil {
		a, err := tokenizer.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating analyzer: %w", err)
		}
		e.analyzer = a
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if err := e.replay(ctx); err != nil {
		return nil, fmt.Errorf("loading stored documents: %w", err)
	}
	return e, nil
}

// Insert analyses text, persists it and folds its terms into the corpus.
// On error nothing is changed.
func (e *Engine) Insert(ctx context.Context, text string) (int, error) {
	analysis, err := e.analyzer.Analyze(text)
	if err != nil {
		e.countWriteError()
		return 0, apperrors.NewWriteError("analyze", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, apperrors.ErrClosed
	}
	id, err := e.store.Append(ctx, text)
	if err != nil {
		e.countWriteError()
		return 0, apperrors.NewWriteError("append", err)
	}
	e.commit(id, analysis)
	e.logger.Debug("document indexed",
		"doc_id", id,
		"token_count", analysis.Total,
		"distinct_terms", len(analysis.Terms),
		"vocabulary_size", e.vocab.Size(),
	)
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
	}
	return id, nil
}

// commit applies an already persisted document. It cannot fail.
func (e *Engine) commit(id int, a tokenizer.Analysis) {
	if id != e.stats.TotalDocs() {
		panic(fmt.Sprintf("indexer: store assigned id %d, expected %d", id, e.stats.TotalDocs()))
	}
	e.vocab.Observe(a.Terms)
	e.stats.Add(id, a.Terms)
	// IDF is corpus-wide, so every insert stales every cached vector, not
	// only inserts that grow the vocabulary.
	e.vectors.MarkDirty()
	if e.metrics != nil {
		e.metrics.VocabularySize.Set(float64(e.vocab.Size()))
	}
}

// Search ranks every document against query and returns at most limit hits,
// best first. Ties keep insertion order. limit <= 0 returns no hits.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]ranker.Hit, error) {
	if limit <= 0 {
		e.mu.RLock()
		defer e.mu.RUnlock()
		if e.closed {
			return nil, apperrors.ErrClosed
		}
		return []ranker.Hit{}, nil
	}
	analysis, err := e.analyzer.Analyze(query)
	if err != nil {
		return nil, apperrors.NewReadError("analyze query", err)
	}

	release, err := e.acquireFresh(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	queryVector, ok := index.QueryVector(analysis, e.vocab, e.stats)
	if !ok {
		return []ranker.Hit{}, nil
	}
	scored := ranker.Rank(queryVector, e.vectors.Vectors(), limit)

	hits := make([]ranker.Hit, 0, len(scored))
	for _, sd := range scored {
		text, err := e.store.Get(ctx, sd.DocID)
		if err != nil {
			return nil, apperrors.NewReadError("load hit", err)
		}
		hits = append(hits, ranker.Hit{DocID: sd.DocID, Text: text, Score: sd.Score})
	}
	return hits, nil
}

// SearchAll is Search without a limit.
func (e *Engine) SearchAll(ctx context.Context, query string) ([]ranker.Hit, error) {
	return e.Search(ctx, query, ranker.Unlimited)
}

// AllDocuments returns every stored text in insertion order.
func (e *Engine) AllDocuments(ctx context.Context) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, apperrors.ErrClosed
	}
	docs, err := e.store.All(ctx)
	if err != nil {
		return nil, apperrors.NewReadError("list documents", err)
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	return texts, nil
}

// acquireFresh returns holding a lock under which the vector cache is clean.
func (e *Engine) acquireFresh(ctx context.Context) (release func(), err error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, apperrors.ErrClosed
	}
	if e.vectors.State() == index.Clean {
		return e.mu.RUnlock, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, apperrors.ErrClosed
	}
	if err := e.ensureFresh(ctx); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	return e.mu.Unlock, nil
}

// ensureFresh rebuilds every document vector if the cache is dirty. The
// caller holds the write lock.
func (e *Engine) ensureFresh(ctx context.Context) error {
	if e.vectors.State() == index.Clean {
		return nil
	}
	start := time.Now()
	numDocs, dims := e.stats.TotalDocs(), e.vocab.Size()
	err := e.vectors.Rebuild(ctx, numDocs, dims, e.workers, func(ctx context.Context, id int) ([]float64, error) {
		text, err := e.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		a, err := e.analyzer.Analyze(text)
		if err != nil {
			return nil, fmt.Errorf("analyzing document %d: %w", id, err)
		}
		return index.DocumentVector(a, e.vocab, e.stats), nil
	})
	elapsed := time.Since(start)
	if err != nil {
		e.logger.Error("vector rebuild failed", "docs", numDocs, "dims", dims, "error", err)
		if e.metrics != nil {
			e.metrics.VectorRebuildsTotal.WithLabelValues("error").Inc()
		}
		return apperrors.NewReadError("rebuild", err)
	}
	e.logger.Info("vector cache rebuilt",
		"docs", numDocs,
		"dims", dims,
		"duration", elapsed,
	)
	if e.metrics != nil {
		e.metrics.VectorRebuildsTotal.WithLabelValues("ok").Inc()
		e.metrics.VectorRebuildDuration.Observe(elapsed.Seconds())
	}
	return nil
}

func (e *Engine) replay(ctx context.Context) error {
	docs, err := e.store.All(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		a, err := e.analyzer.Analyze(d.Text)
		if err != nil {
			return fmt.Errorf("analyzing stored document %d: %w", d.ID, err)
		}
		if d.ID != e.stats.TotalDocs() {
			return fmt.Errorf("stored document ids not sequential: got %d, want %d", d.ID, e.stats.TotalDocs())
		}
		e.commit(d.ID, a)
	}
	if len(docs) > 0 {
		e.logger.Info("stored documents loaded",
			"docs", len(docs),
			"vocabulary_size", e.vocab.Size(),
		)
	}
	return nil
}

// Close releases the store. Every later call fails with ErrClosed; closing
// twice is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.store.Close(); err != nil {
		e.logger.Error("closing document store", "error", err)
		return fmt.Errorf("closing document store: %w", err)
	}
	e.logger.Info("engine closed", "docs", e.stats.TotalDocs())
	return nil
}

// Stats is a point-in-time summary of the engine.
type Stats struct {
	TotalDocs      int    `json:"total_docs"`
	VocabularySize int    `json:"vocabulary_size"`
	CacheState     string `json:"cache_state"`
	CachedVectors  int    `json:"cached_vectors"`
	CachedDims     int    `json:"cached_dims"`
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		TotalDocs:      e.stats.TotalDocs(),
		VocabularySize: e.vocab.Size(),
		CacheState:     e.vectors.State().String(),
		CachedVectors:  e.vectors.Len(),
		CachedDims:     e.vectors.Dims(),
	}
}

func (e *Engine) TotalDocs() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats.TotalDocs()
}

func (e *Engine) DocFrequency(term string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stats.DocFrequency(term)
}

func (e *Engine) VocabularySize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vocab.Size()
}

// Dimension returns the vocabulary id of term.
func (e *Engine) Dimension(term string) (int, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vocab.Lookup(term)
}

// CachedVector returns a copy of the cached vector of docID as of the last
// rebuild. It never triggers a rebuild.
func (e *Engine) CachedVector(docID int) ([]float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectors.Vector(docID)
}

func (e *Engine) Ping(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return apperrors.ErrClosed
	}
	return e.store.Ping(ctx)
}

func (e *Engine) countWriteError() {
	if e.metrics != nil {
		e.metrics.IndexWriteErrorsTotal.Inc()
	}
}
