package tokenizer

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimple(t *testing.T, opts Options) *Simple {
	t.Helper()
	s, err := NewSimple(opts)
	require.NoError(t, err)
	return s
}

func TestSimpleAnalyzeCountsAndOrder(t *testing.T) {
	s := newSimple(t, Options{})

	a, err := s.Analyze("The cat sat on the mat, the END")
	require.NoError(t, err)

	assert.Equal(t, 8, a.Total)
	assert.Equal(t, []string{"the", "cat", "sat", "on", "mat", "end"}, a.Terms)
	assert.Equal(t, 3, a.Frequencies["the"])
	assert.Equal(t, 1, a.Frequencies["end"])
}

func TestSimpleKeepsSingleCharacterTermsByDefault(t *testing.T) {
	s := newSimple(t, Options{})
	a, err := s.Analyze("a b a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, a.Frequencies)
	assert.Equal(t, 3, a.Total)
}

func TestSimpleStopWordsAndMinLength(t *testing.T) {
	s := newSimple(t, Options{StopWords: true, MinLength: 2})
	toks := s.Tokenize("The quick x fox is in the box")

	terms := make([]string, 0, len(toks))
	for _, tok := range toks {
		terms = append(terms, tok.Term)
	}
	assert.Equal(t, []string{"quick", "fox", "box"}, terms)
	assert.Equal(t, 2, toks[2].Position)
}

func TestSimpleStemmers(t *testing.T) {
	tests := []struct {
		stemmer string
		in      string
		want    string
	}{
		{StemNone, "running", "running"},
		{StemSuffix, "indexing", "index"},
		{StemSnowball, "running", "run"},
	}
	for _, tt := range tests {
		t.Run(tt.stemmer+"/"+tt.in, func(t *testing.T) {
			s := newSimple(t, Options{Stemmer: tt.stemmer})
			a, err := s.Analyze(tt.in)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, a.Terms)
		})
	}
}

func TestNewSimpleRejectsUnknownStemmer(t *testing.T) {
	_, err := NewSimple(Options{Stemmer: "lancaster"})
	assert.Error(t, err)
}

func TestEmptyText(t *testing.T) {
	s := newSimple(t, Options{})
	a, err := s.Analyze("  ,;  ")
	require.NoError(t, err)
	assert.Zero(t, a.Total)
	assert.Empty(t, a.Terms)
	assert.Empty(t, a.Frequencies)
}

func TestBleveStandard(t *testing.T) {
	b, err := NewBleve(BleveStandard)
	require.NoError(t, err)

	a, err := b.Analyze("[ERROR] Failed to execute the Goal")
	require.NoError(t, err)

	assert.Contains(t, a.Terms, "error")
	assert.Contains(t, a.Terms, "failed")
	assert.Contains(t, a.Terms, "goal")
	assert.NotContains(t, a.Terms, "the")
	assert.NotContains(t, a.Terms, "to")
}

func TestNewFromConfig(t *testing.T) {
	a, err := New(config.IndexerConfig{Analyzer: "simple", Stemmer: "snowball"})
	require.NoError(t, err)
	assert.IsType(t, &Simple{}, a)

	a, err = New(config.IndexerConfig{Analyzer: "standard"})
	require.NoError(t, err)
	assert.IsType(t, &Bleve{}, a)

	_, err = New(config.IndexerConfig{Analyzer: "keyword"})
	assert.Error(t, err)
}
