// Package tokenizer turns raw text into the term statistics the index needs.
// Normalisation, stemming and stop-word policy live here and nowhere else;
// documents and queries always go through the same Analyzer.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/kljensen/snowball/english"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Analysis is the term-frequency view of one text.
type Analysis struct {
	// Frequencies maps each distinct term to its occurrence count.
	Frequencies map[string]int
	// Terms lists the distinct terms in order of first occurrence.
	Terms []string
	// Total is the number of tokens kept after normalisation.
	Total int
}

// Analyzer is the contract between the index and text processing.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(text string) (Analysis, error)
}

// FromTokens folds a token stream into an Analysis.
func FromTokens(tokens []Token) Analysis {
	a := Analysis{
		Frequencies: make(map[string]int, len(tokens)),
		Terms:       make([]string, 0, len(tokens)),
		Total:       len(tokens),
	}
	for _, tok := range tokens {
		if _, seen := a.Frequencies[tok.Term]; !seen {
			a.Terms = append(a.Terms, tok.Term)
		}
		a.Frequencies[tok.Term]++
	}
	return a
}

// Stemmer names accepted by Options.Stemmer.
const (
	StemNone     = "none"
	StemSuffix   = "suffix"
	StemSnowball = "snowball"
)

// Options configures the Simple analyzer.
type Options struct {
	StopWords bool
	Stemmer   string
	MinLength int
}

// Simple lower-cases input, splits on non-alphanumeric boundaries and
// optionally removes stop-words and stems.
type Simple struct {
	opts Options
	stem func(string) string
}

// NewSimple returns a Simple analyzer. An empty Stemmer means no stemming.
func NewSimple(opts Options) (*Simple, error) {
	s := &Simple{opts: opts}
	switch opts.Stemmer {
	case "", StemNone:
		s.stem = nil
	case StemSuffix:
		s.stem = stem
	case StemSnowball:
		s.stem = func(word string) string {
			return english.Stem(word, false)
		}
	default:
		return nil, fmt.Errorf("unknown stemmer %q", opts.Stemmer)
	}
	if s.opts.MinLength < 1 {
		s.opts.MinLength = 1
	}
	return s, nil
}

// Tokenize breaks text into a slice of lowercased Tokens.
func (s *Simple) Tokenize(text string) []Token {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if len([]rune(word)) < s.opts.MinLength {
			continue
		}
		if s.opts.StopWords {
			if _, isStop := stopWords[word]; isStop {
				continue
			}
		}
		if s.stem != nil {
			word = s.stem(word)
			if word == "" {
				continue
			}
		}
		tokens = append(tokens, Token{
			Term:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

func (s *Simple) Analyze(text string) (Analysis, error) {
	return FromTokens(s.Tokenize(text)), nil
}

// New builds the analyzer named by cfg.Analyzer.
func New(cfg config.IndexerConfig) (Analyzer, error) {
	switch cfg.Analyzer {
	case "", "simple":
		return NewSimple(Options{
			StopWords: cfg.StopWords,
			Stemmer:   cfg.Stemmer,
			MinLength: cfg.MinTokenLength,
		})
	case "standard":
		return NewBleve(BleveStandard)
	default:
		return nil, fmt.Errorf("unknown analyzer %q", cfg.Analyzer)
	}
}

// stem applies a simple suffix-stripping stemmer to the given word.
func stem(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minLen      int
	}{
		{"ational", "ate", 2},
		{"tional", "tion", 2},
		{"encies", "ence", 2},
		{"ances", "ance", 2},
		{"ments", "ment", 2},
		{"izing", "ize", 2},
		{"ating", "ate", 2},
		{"iness", "y", 2},
		{"ously", "ous", 2},
		{"ively", "ive", 2},
		{"eness", "ene", 2},
		{"tion", "t", 3},
		{"sion", "s", 3},
		{"ying", "y", 2},
		{"ling", "l", 3},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ers", "er", 2},
		{"est", "", 3},
		{"ful", "", 3},
		{"ous", "", 3},
		{"ess", "", 3},
		{"ble", "", 3},
		{"ed", "", 3},
		{"er", "", 3},
		{"ly", "", 3},
		{"es", "", 3},
		{"ss", "ss", 2},
		{"s", "", 3},
	}
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}
