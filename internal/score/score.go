// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/digest-engine/internal/fingerprint"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// Scorer applies all four signals to a batch of canonical documents.
type Scorer struct {
	Config types.ScoringConfig

	// Topics are the run's query strings for relevance scoring.
	Topics []string

	// Oracle is the optional similarity capability. Nil selects the
	// keyword fallback for every document.
	Oracle Oracle

	// History is the read-only recent-history window supplied by the
	// storage collaborator, consumed only by novelty scoring.
	History []types.CandidateDocument

	// Now fixes the reference time for recency; zero means time.Now().
	Now time.Time
}

// ScoreAll scores every document and returns them in input order. The
// relevance calls may hit the external oracle, so they run on a bounded
// worker pool with per-call timeouts; recency, credibility, and novelty
// are pure and computed inline. ScoreAll cannot fail: oracle errors
// degrade per document to the keyword fallback.
func (s *Scorer) ScoreAll(ctx context.Context, docs []types.CandidateDocument) []types.ScoredDocument {
	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}

	rel := &RelevanceScorer{
		Oracle:     s.Oracle,
		Topics:     s.Topics,
		Timeout:    s.Config.OracleTimeout,
		MaxTextLen: s.Config.MaxTextLen,
	}

	workers := s.Config.OracleWorkers
	if workers <= 0 {
		workers = 4
	}

	out := make([]types.ScoredDocument, len(docs))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			relevance, usedFallback := rel.Score(ctx, doc)
			out[i] = types.ScoredDocument{
				Document:     doc,
				Fingerprints: fingerprint.Generate(doc),
				Scores: types.SignalScores{
					Relevance:         relevance,
					Recency:           Recency(doc.Date, now, s.Config.RecencyHalfLifeDays, s.Config.RecencyDefault),
					Credibility:       Credibility(doc.Source, s.Config.SourceReputation, s.Config.CredibilityDefault),
					RelevanceFallback: usedFallback,
				},
			}
			return nil
		})
	}
	g.Wait()

	// Novelty needs the full canonical set, so it runs after the pool.
	for i := range docs {
		others := make([]types.CandidateDocument, 0, len(docs)-1+len(s.History))
		others = append(others, docs[:i]...)
		others = append(others, docs[i+1:]...)
		others = append(others, s.History...)
		out[i].Scores.Novelty = Novelty(docs[i], others, s.Config.NoveltyThreshold)
	}

	return out
}
