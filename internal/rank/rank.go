// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank combines the four signal scores into a weighted total and
// produces the final ordering. Ordering is a strict total order: the
// tie-break chain ends at the document's primary fingerprint, so no two
// distinct documents compare equal and a rerun reproduces the sequence
// exactly.
package rank

import (
	"sort"

	"github.com/pdiddy/digest-engine/pkg/types"
)

// Rank computes each document's weighted total, drops documents whose
// relevance is strictly below floor, and returns the rest ordered by
// total descending. Weights are applied as given; callers may use
// un-normalized weights and no renormalization happens here. Truncating
// to a maximum item count is the caller's responsibility.
//
// The floor exists because a document can score high on recency,
// credibility, and novelty while being entirely off topic; relevance
// alone gates eligibility.
func Rank(scored []types.ScoredDocument, weights types.Weights, floor float64) []types.ScoredDocument {
	ranked := make([]types.ScoredDocument, 0, len(scored))
	for _, sd := range scored {
		if sd.Scores.Relevance < floor {
			continue
		}
		sd.Total = Total(sd.Scores, weights)
		ranked = append(ranked, sd)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	return ranked
}

// Total is the weighted sum of the four signals.
func Total(s types.SignalScores, w types.Weights) float64 {
	return s.Relevance*w.Relevance +
		s.Recency*w.Recency +
		s.Credibility*w.Credibility +
		s.Novelty*w.Novelty
}

// less orders by total descending, then relevance descending, then
// publication date descending (prefer newer on exact ties), then primary
// fingerprint key ascending as the stable identity.
func less(a, b types.ScoredDocument) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.Scores.Relevance != b.Scores.Relevance {
		return a.Scores.Relevance > b.Scores.Relevance
	}
	if !a.Document.Date.Equal(b.Document.Date) {
		return a.Document.Date.After(b.Document.Date)
	}
	return a.PrimaryFingerprint().Key() < b.PrimaryFingerprint().Key()
}
