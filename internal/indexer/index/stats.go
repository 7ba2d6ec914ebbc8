package index

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Stats tracks, for every term, the set of documents whose term-frequency
// map contains it, plus the total document count.
type Stats struct {
	postings  map[string]*roaring.Bitmap
	totalDocs int
}

func NewStats() *Stats {
	return &Stats{
		postings: make(map[string]*roaring.Bitmap),
	}
}

// Add records document docID as containing each of terms. terms must be
// distinct; adding the same document twice does not double count a term.
func (s *Stats) Add(docID int, terms []string) {
	for _, term := range terms {
		bm, exists := s.postings[term]
		if !exists {
			bm = roaring.New()
			s.postings[term] = bm
		}
		bm.Add(uint32(docID))
	}
	s.totalDocs++
}

// DocFrequency is the number of documents containing term.
func (s *Stats) DocFrequency(term string) int {
	bm, exists := s.postings[term]
	if !exists {
		return 0
	}
	return int(bm.GetCardinality())
}

// Documents returns a copy of the ids of documents containing term.
func (s *Stats) Documents(term string) []uint32 {
	bm, exists := s.postings[term]
	if !exists {
		return nil
	}
	return bm.ToArray()
}

func (s *Stats) TotalDocs() int {
	return s.totalDocs
}
