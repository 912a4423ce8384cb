// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the four independent ranking signals — relevance,
// recency, credibility, novelty — each mapping a canonical document to a
// value in [0, 1]. Scorers are total over normalized documents: an
// unavailable similarity oracle degrades to keyword overlap, an unknown
// date or source falls back to a configured default, and nothing here can
// fail a batch.
package score

import "context"

// Oracle is the injected semantic-similarity capability. Implementations
// return a similarity in [-1, 1] between two texts; callers clamp
// negatives to zero. An error or timeout means the caller must fall back
// to keyword overlap rather than failing the document.
type Oracle interface {
	// Similarity scores the semantic closeness of a and b.
	Similarity(ctx context.Context, a, b string) (float64, error)

	// Name identifies the oracle for logging.
	Name() string
}
