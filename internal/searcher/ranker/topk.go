package ranker

import (
	"container/heap"
)

// topK selects the best k of scored with a bounded min-heap. Ties go to the
// lower DocID, matching the stable full sort.
func topK(scored []ScoredDoc, k int) []ScoredDoc {
	h := &scoredDocHeap{}
	heap.Init(h)
	for _, doc := range scored {
		heap.Push(h, doc)
		if h.Len() > k {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result
}

type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

// Less orders the worst candidate first.
func (h scoredDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x any) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
