// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the full digest flow over an in-memory batch:
// normalize, fingerprint, deduplicate, score, rank. Configuration is
// validated before the first document is touched; after that nothing
// aborts the run. Per-document conditions (missing titles, oracle
// fallbacks) surface as diagnostics on the output.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/digest-engine/internal/dedup"
	"github.com/pdiddy/digest-engine/internal/normalize"
	"github.com/pdiddy/digest-engine/internal/rank"
	"github.com/pdiddy/digest-engine/internal/score"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// SeenLookup reports which fingerprint keys earlier runs already recorded.
// *history.Store satisfies it.
type SeenLookup interface {
	Seen(ctx context.Context, fps []types.Fingerprint) (map[string]bool, error)
}

// Input is one run's worth of raw material. Documents come from the
// discovery collaborators; History is the read-only recent window from
// the storage collaborator; Oracle is the optional similarity capability.
type Input struct {
	Documents []types.CandidateDocument
	Topics    []string
	Oracle    score.Oracle
	History   []types.CandidateDocument

	// Seen, when set, marks ranked documents already recorded by an
	// earlier run.
	Seen SeenLookup

	// Now fixes the reference time for recency scoring; zero means the
	// wall clock.
	Now time.Time
}

// Diagnostic records a per-document condition that did not stop the run.
type Diagnostic struct {
	Title  string `json:"title" yaml:"title"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// Output is the ranked sequence plus the audit trail: which documents
// were merged into which groups, which were dropped, and which needed
// the relevance fallback.
type Output struct {
	Ranked      []types.ScoredDocument
	Groups      []types.DuplicateGroup
	Dropped     []Diagnostic
	DupsRemoved int
	Fallbacks   int
	Repeats     int
}

// Run executes the pipeline over the input batch. The only error is
// invalid configuration, checked before any document is processed; every
// other condition degrades per document.
func Run(ctx context.Context, cfg types.PipelineConfig, in Input, log zerolog.Logger) (Output, error) {
	if err := cfg.Validate(); err != nil {
		return Output{}, fmt.Errorf("validating configuration: %w", err)
	}

	var out Output

	// Normalize; drop titleless documents with a diagnostic.
	accepted := make([]types.CandidateDocument, 0, len(in.Documents))
	for _, raw := range in.Documents {
		doc, err := normalize.Document(raw)
		if err != nil {
			out.Dropped = append(out.Dropped, Diagnostic{
				Title:  raw.Title,
				Source: raw.Source,
				Reason: err.Error(),
			})
			log.Warn().Str("source", raw.Source).Str("url", raw.URL).Msg("dropping document with no title")
			continue
		}
		accepted = append(accepted, doc)
	}

	out.Groups = dedup.Group(accepted, cfg.Dedup)
	canonicals := dedup.Canonicals(out.Groups)
	out.DupsRemoved = len(accepted) - len(canonicals)

	scorer := &score.Scorer{
		Config:  cfg.Scoring,
		Topics:  in.Topics,
		Oracle:  in.Oracle,
		History: in.History,
		Now:     in.Now,
	}
	scored := scorer.ScoreAll(ctx, canonicals)
	for _, sd := range scored {
		if sd.Scores.RelevanceFallback {
			out.Fallbacks++
		}
	}
	if in.Oracle != nil && out.Fallbacks > 0 {
		log.Warn().Int("documents", out.Fallbacks).Str("oracle", in.Oracle.Name()).
			Msg("similarity oracle unavailable, keyword fallback used")
	}

	out.Ranked = rank.Rank(scored, cfg.Scoring.Weights, cfg.Scoring.RelevanceFloor)

	if in.Seen != nil {
		out.Repeats = markRepeats(ctx, in.Seen, out.Ranked, log)
	}

	log.Info().
		Int("raw", len(in.Documents)).
		Int("accepted", len(accepted)).
		Int("canonical", len(canonicals)).
		Int("duplicates_removed", out.DupsRemoved).
		Int("ranked", len(out.Ranked)).
		Int("repeats", out.Repeats).
		Msg("pipeline run complete")

	return out, nil
}

// markRepeats flags ranked documents whose fingerprints an earlier run
// already recorded. Lookup failures cost the annotation, not the run.
func markRepeats(ctx context.Context, seen SeenLookup, ranked []types.ScoredDocument, log zerolog.Logger) int {
	var fps []types.Fingerprint
	for _, sd := range ranked {
		fps = append(fps, sd.Fingerprints...)
	}
	if len(fps) == 0 {
		return 0
	}

	known, err := seen.Seen(ctx, fps)
	if err != nil {
		log.Warn().Err(err).Msg("seen lookup failed, repeat annotation skipped")
		return 0
	}

	repeats := 0
	for i := range ranked {
		for _, fp := range ranked[i].Fingerprints {
			if known[fp.Key()] {
				ranked[i].Repeat = true
				repeats++
				break
			}
		}
	}
	return repeats
}
