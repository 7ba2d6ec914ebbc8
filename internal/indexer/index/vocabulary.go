// Package index holds the corpus-wide state that TF-IDF weighting depends on:
// the term vocabulary, per-term document statistics, and the cache of dense
// document vectors derived from both.
//
// None of the types here lock internally. The engine owns a single
// read-write lock and serialises every mutation through it.
package index

// Vocabulary maps terms to dense dimension ids. Ids are assigned in
// first-seen order starting at 0 and are never removed or renumbered.
type Vocabulary struct {
	ids   map[string]int
	terms []string
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{
		ids: make(map[string]int),
	}
}

// Observe assigns the next free id to every term not yet present, in the
// order given. It reports whether the vocabulary grew.
func (v *Vocabulary) Observe(terms []string) bool {
	grew := false
	for _, term := range terms {
		if _, exists := v.ids[term]; exists {
			continue
		}
		v.ids[term] = len(v.terms)
		v.terms = append(v.terms, term)
		grew = true
	}
	return grew
}

func (v *Vocabulary) Lookup(term string) (int, bool) {
	id, ok := v.ids[term]
	return id, ok
}

// Term returns the term at dimension id.
func (v *Vocabulary) Term(id int) string {
	return v.terms[id]
}

func (v *Vocabulary) Size() int {
	return len(v.terms)
}
