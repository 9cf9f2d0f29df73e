package index

import "sort"

// InvertedIndex maps every normalised token to the documents that contain
// it. Lists hold references to documents owned by the caller. An
// InvertedIndex is written by a single goroutine while it is being built and
// is read-only afterwards.
type InvertedIndex struct {
	postings map[string]PostingList
}

func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		postings: make(map[string]PostingList),
	}
}

// Add appends doc to the posting list of each of its distinct terms.
func (idx *InvertedIndex) Add(doc *Document) {
	for _, term := range doc.Terms() {
		idx.postings[term] = append(idx.postings[term], doc)
	}
}

// Postings returns the posting list for an already normalised term, or nil.
func (idx *InvertedIndex) Postings(term string) PostingList {
	return idx.postings[term]
}

// DocFreq returns the number of documents containing term.
func (idx *InvertedIndex) DocFreq(term string) int {
	return len(idx.postings[term])
}

// Contains reports whether any document contains term.
func (idx *InvertedIndex) Contains(term string) bool {
	_, ok := idx.postings[term]
	return ok
}

// Len returns the vocabulary size.
func (idx *InvertedIndex) Len() int {
	return len(idx.postings)
}

// Snapshot returns every term with a copy of its postings, sorted by term.
func (idx *InvertedIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(idx.postings))
	for term, postings := range idx.postings {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: append(PostingList(nil), postings...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
