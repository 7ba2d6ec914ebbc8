package ranker

import (
	"fmt"
	"math"
	"sort"
)

// Unlimited returns every scored document.
const Unlimited = math.MaxInt

type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// Hit is a ranked document with its stored text.
type Hit struct {
	DocID int     `json:"doc_id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

func (h Hit) String() string {
	return fmt.Sprintf("SearchHit{text='%s', similarity=%.4f}", h.Text, h.Score)
}

// CosineSimilarity returns dot(a,b) / (|a|·|b|), or 0 when either vector has
// zero norm. Vectors of different length are a programming error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("ranker: vectors must have the same dimension: %d != %d", len(a), len(b)))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores query against docs, where docs[i] belongs to document i, and
// returns at most limit results by descending score. Equal scores keep
// document order.
func Rank(query []float64, docs [][]float64, limit int) []ScoredDoc {
	if limit <= 0 {
		return []ScoredDoc{}
	}
	scored := make([]ScoredDoc, len(docs))
	for id, vector := range docs {
		scored[id] = ScoredDoc{
			DocID: id,
			Score: CosineSimilarity(query, vector),
		}
	}
	if limit < len(scored) {
		return topK(scored, limit)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
