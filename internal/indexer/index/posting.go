package index

// PostingList is the ordered list of documents containing one token. A
// document appears at most once per list.
type PostingList []*Document

// Paths returns the identifiers of the documents in the list, in list order.
func (p PostingList) Paths() []string {
	paths := make([]string, len(p))
	for i, doc := range p {
		paths[i] = doc.Path()
	}
	return paths
}

// TermEntry pairs a token with its posting list.
type TermEntry struct {
	Term     string
	Postings PostingList
}
