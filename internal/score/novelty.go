// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"github.com/pdiddy/digest-engine/pkg/types"
)

// Novelty scores topical freshness: 1/(1+n) where n counts near
// duplicates of doc among the other canonical documents of the run plus
// the recent-history window. A near duplicate is a document whose title
// token-set Jaccard similarity meets the threshold. This is looser than
// fingerprint-exact dedup on purpose — three outlets covering the same
// story survive exact dedup but should not all rank highly.
func Novelty(doc types.CandidateDocument, others []types.CandidateDocument, threshold float64) float64 {
	docTokens := tokenSet(doc.Title)
	n := 0
	for _, other := range others {
		if jaccard(docTokens, tokenSet(other.Title)) >= threshold {
			n++
		}
	}
	return 1 / float64(1+n)
}

// jaccard returns |a∩b| / |a∪b|, with empty-vs-empty scoring 0 so
// untitled history rows never count as near duplicates.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
