package ranker

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilaritySelfIsOne(t *testing.T) {
	for _, v := range [][]float64{
		{1},
		{0, 0.3333, 0.1982, 0},
		{1e-9, 5, 0, 7.25},
	} {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-12, "%v", v)
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	for dims := 0; dims < 5; dims++ {
		zero := make([]float64, dims)
		other := make([]float64, dims)
		for i := range other {
			other[i] = float64(i + 1)
		}
		assert.Equal(t, 0.0, CosineSimilarity(zero, other))
		assert.Equal(t, 0.0, CosineSimilarity(other, zero))
		assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 3}))
}

func TestCosineSimilarityDimensionMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3})
	})
}

func TestRankLimitNonPositive(t *testing.T) {
	docs := [][]float64{{1, 0}, {0, 1}}
	assert.Empty(t, Rank([]float64{1, 1}, docs, 0))
	assert.Empty(t, Rank([]float64{1, 1}, docs, -3))
	assert.NotNil(t, Rank([]float64{1, 1}, docs, 0))
}

func TestRankOrdersByScoreThenDocID(t *testing.T) {
	docs := [][]float64{
		{0, 1},
		{1, 0},
		{1, 1},
		{1, 0},
	}
	got := Rank([]float64{1, 0}, docs, Unlimited)

	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 3, 2, 0}, docIDs(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-12)
	assert.InDelta(t, 1/1.4142135623730951, got[2].Score, 1e-12)
}

func TestRankTiesResolveToEarliest(t *testing.T) {
	docs := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	got := Rank([]float64{1, 1}, docs, 2)
	assert.Equal(t, []int{0, 1}, docIDs(got))
}

func TestRankTopKMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	docs := make([][]float64, 200)
	for i := range docs {
		// coarse values force many ties
		docs[i] = []float64{float64(rng.Intn(3)), float64(rng.Intn(3)), float64(rng.Intn(3))}
	}
	query := []float64{1, 2, 0}
	full := Rank(query, docs, Unlimited)
	require.True(t, sort.SliceIsSorted(full, func(i, j int) bool {
		return full[i].Score > full[j].Score
	}))

	for _, k := range []int{1, 5, 37, 199} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			assert.Equal(t, full[:k], Rank(query, docs, k))
		})
	}
}

func TestHitString(t *testing.T) {
	h := Hit{Text: "the cat sat", Score: 0.123456}
	assert.Equal(t, "SearchHit{text='the cat sat', similarity=0.1235}", h.String())
}

func docIDs(docs []ScoredDoc) []int {
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID
	}
	return ids
}
