package tokenizer

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/registry"
)

// BleveStandard is bleve's standard analyzer: unicode word segmentation,
// lower-casing and English stop-word removal.
const BleveStandard = standard.Name

// Bleve adapts an analyzer from the bleve registry.
type Bleve struct {
	name     string
	analyzer analysis.Analyzer
}

// NewBleve looks up a registered bleve analyzer by name.
func NewBleve(name string) (*Bleve, error) {
	cache := registry.NewCache()
	a, err := cache.AnalyzerNamed(name)
	if err != nil {
		return nil, fmt.Errorf("loading bleve analyzer %q: %w", name, err)
	}
	return &Bleve{name: name, analyzer: a}, nil
}

func (b *Bleve) Analyze(text string) (Analysis, error) {
	stream := b.analyzer.Analyze([]byte(text))
	tokens := make([]Token, 0, len(stream))
	for i, tok := range stream {
		if len(tok.Term) == 0 {
			continue
		}
		tokens = append(tokens, Token{Term: string(tok.Term), Position: i})
	}
	return FromTokens(tokens), nil
}
