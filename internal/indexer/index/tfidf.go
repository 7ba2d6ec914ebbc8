package index

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/tokenizer"
)

// IDF is ln(totalDocs / (docFreq + 1)) + 1. The trailing +1 keeps the weight
// positive for terms present in every document.
func IDF(totalDocs, docFreq int) float64 {
	return math.Log(float64(totalDocs)/float64(docFreq+1)) + 1.0
}

// Weigh writes TF×IDF for every analysed term present in vocab into a fresh
// vector of length vocab.Size(). It also returns how many dimensions were
// set.
func Weigh(a tokenizer.Analysis, vocab *Vocabulary, stats *Stats) ([]float64, int) {
	vector := make([]float64, vocab.Size())
	if a.Total == 0 {
		return vector, 0
	}
	hits := 0
	total := stats.TotalDocs()
	for term, count := range a.Frequencies {
		dim, ok := vocab.Lookup(term)
		if !ok {
			continue
		}
		tf := float64(count) / float64(a.Total)
		vector[dim] = tf * IDF(total, stats.DocFrequency(term))
		hits++
	}
	return vector, hits
}

// DocumentVector builds the TF-IDF vector of a stored document.
func DocumentVector(a tokenizer.Analysis, vocab *Vocabulary, stats *Stats) []float64 {
	vector, _ := Weigh(a, vocab, stats)
	return vector
}

// QueryVector builds the TF-IDF vector of a transient query. Terms outside
// the vocabulary are dropped; ok is false when none remain.
func QueryVector(a tokenizer.Analysis, vocab *Vocabulary, stats *Stats) (vector []float64, ok bool) {
	vector, hits := Weigh(a, vocab, stats)
	if hits == 0 {
		return nil, false
	}
	return vector, true
}
