package ranker

import "sort"

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Rank orders accumulated per-document scores by descending score. Equal
// scores are ordered by ascending DocID so that results do not depend on map
// iteration or directory listing order. A positive limit truncates the
// result.
func Rank(scores map[string]float64, limit int) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: score,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// DocIDs returns the identifiers of docs in order.
func DocIDs(docs []ScoredDoc) []string {
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.DocID
	}
	return ids
}
