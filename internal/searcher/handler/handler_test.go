package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func (b *memBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (b *memBackend) Set(_ context.Context, key string, value any, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = string(value.([]byte))
	return nil
}

func (b *memBackend) FlushByPattern(context.Context, string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := int64(len(b.data))
	b.data = make(map[string]string)
	return n, nil
}

type fixture struct {
	engine *indexer.Engine
	cache  *cache.QueryCache
	mux    *http.ServeMux
}

func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	e, err := indexer.NewEngine(context.Background(), config.Default().Indexer, store.NewMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	var qc *cache.QueryCache
	if withCache {
		qc = cache.New(&memBackend{data: make(map[string]string)}, config.RedisConfig{CacheTTL: time.Minute}, nil)
	}
	h := New(executor.New(e, nil), e, qc, nil, 10, 2)
	mux := http.NewServeMux()
	h.Register(mux)
	return &fixture{engine: e, cache: qc, mux: mux}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) seed(t *testing.T, texts ...string) {
	t.Helper()
	for i, text := range texts {
		body, err := json.Marshal(map[string]string{"text": text})
		require.NoError(t, err)
		rec := f.do(t, http.MethodPost, "/api/v1/documents", string(body))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"id":`+strconv.Itoa(i)+`}`, rec.Body.String())
	}
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) executor.SearchResult {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res executor.SearchResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

var corpus = []string{"the cat sat", "the dog ran", "cat and dog"}

func TestSearch(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, corpus...)

	res := decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=cat&limit=1", ""))
	require.Len(t, res.Results, 1)
	assert.Equal(t, 0, res.Results[0].DocID)
	assert.Equal(t, "the cat sat", res.Results[0].Text)
	assert.Equal(t, 3, res.Generation)

	res = decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=cat&limit=all", ""))
	require.Len(t, res.Results, 3)
	assert.Equal(t, []int{0, 2, 1}, []int{res.Results[0].DocID, res.Results[1].DocID, res.Results[2].DocID})
	assert.Zero(t, res.Results[2].Score)

	res = decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=cat&limit=500", ""))
	assert.Len(t, res.Results, 2)

	res = decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=zebra", ""))
	assert.Empty(t, res.Results)
}

func TestSearchBadRequests(t *testing.T) {
	f := newFixture(t, false)
	for _, target := range []string{
		"/api/v1/search",
		"/api/v1/search?q=%20%20",
		"/api/v1/search?q=cat&limit=0",
		"/api/v1/search?q=cat&limit=-3",
		"/api/v1/search?q=cat&limit=ten",
	} {
		rec := f.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestInsertBadRequests(t *testing.T) {
	f := newFixture(t, false)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/v1/documents", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/v1/documents", `{"body":"x"}`).Code)
	assert.Zero(t, f.engine.TotalDocs())
}

func TestInsertEmptyText(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodPost, "/api/v1/documents", `{"text":""}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.engine.TotalDocs())
}

func TestDocumentsAndStats(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, corpus...)

	rec := f.do(t, http.MethodGet, "/api/v1/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs struct {
		Total     int      `json:"total"`
		Documents []string `json:"documents"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&docs))
	assert.Equal(t, 3, docs.Total)
	assert.Equal(t, corpus, docs.Documents)

	rec = f.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats indexer.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 3, stats.TotalDocs)
	assert.Equal(t, 6, stats.VocabularySize)
	assert.Equal(t, "dirty", stats.CacheState)
}

func TestClosedEngine(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, corpus...)
	require.NoError(t, f.engine.Close())

	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/v1/search?q=cat", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, "/api/v1/documents", `{"text":"x"}`).Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/v1/documents", "").Code)
}

func TestSearchCacheFollowsGeneration(t *testing.T) {
	f := newFixture(t, true)
	f.seed(t, corpus...)

	first := decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=cat", ""))
	second := decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=CAT", ""))
	assert.Equal(t, first, second)
	hits, misses := f.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)

	_, err := f.engine.Insert(context.Background(), "cat cat cat")
	require.NoError(t, err)

	third := decodeResult(t, f.do(t, http.MethodGet, "/api/v1/search?q=cat", ""))
	assert.Equal(t, 4, third.Generation)
	assert.Equal(t, 3, third.Results[0].DocID)
	hits, misses = f.cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)

	rec := f.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hits":1`)

	rec = f.do(t, http.MethodPost, "/api/v1/cache/invalidate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCacheEndpointsWhenDisabled(t *testing.T) {
	f := newFixture(t, false)
	rec := f.do(t, http.MethodGet, "/api/v1/cache/stats", "")
	assert.JSONEq(t, `{"status":"disabled"}`, rec.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, "/api/v1/cache/invalidate", "").Code)
}
