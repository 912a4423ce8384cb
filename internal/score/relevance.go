// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/digest-engine/internal/normalize"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// stopWords are excluded from keyword-overlap matching.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "the": true, "to": true,
	"with": true,
}

// RelevanceScorer scores how close a document is to the run's topics.
//
// With an oracle, the score is the maximum similarity between the
// document text (title + abstract, length-bounded) and each topic string,
// clamped to [0, 1] — maximum rather than mean, so a document squarely on
// one topic is not diluted by the others. Without an oracle, or when an
// oracle call errors or times out, the keyword-overlap fallback is used:
// the best per-topic fraction of topic tokens (stop words removed) found
// in the document's token set. Scoring never fails the document.
type RelevanceScorer struct {
	Oracle     Oracle // nil means fallback only
	Topics     []string
	Timeout    time.Duration
	MaxTextLen int
}

// Score returns the relevance in [0, 1] and whether the keyword fallback
// produced it.
func (s *RelevanceScorer) Score(ctx context.Context, doc types.CandidateDocument) (float64, bool) {
	if len(s.Topics) == 0 {
		return 0, false
	}

	text := doc.Title
	if doc.Abstract != "" {
		text += " " + doc.Abstract
	}
	if s.MaxTextLen > 0 && len(text) > s.MaxTextLen {
		// Back off to a rune boundary so the cut never produces
		// invalid UTF-8.
		cut := s.MaxTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	if s.Oracle != nil {
		if best, ok := s.oracleScore(ctx, text); ok {
			return best, false
		}
	}
	return s.keywordScore(text), true
}

// oracleScore returns the best clamped topic similarity, or ok=false when
// any oracle call failed and the caller must fall back.
func (s *RelevanceScorer) oracleScore(ctx context.Context, text string) (float64, bool) {
	best := 0.0
	for _, topic := range s.Topics {
		sim, err := s.topicSimilarity(ctx, text, topic)
		if err != nil {
			return 0, false
		}
		if sim > best {
			best = sim
		}
	}
	if best > 1 {
		best = 1
	}
	return best, true
}

// topicSimilarity makes one oracle call under its own timeout, releasing
// the timeout context before the next call starts.
func (s *RelevanceScorer) topicSimilarity(ctx context.Context, text, topic string) (float64, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Oracle.Similarity(ctx, text, topic)
}

// keywordScore is the oracle-free fallback: the best per-topic fraction of
// topic tokens present in the document token set.
func (s *RelevanceScorer) keywordScore(text string) float64 {
	docTokens := tokenSet(text)
	best := 0.0
	for _, topic := range s.Topics {
		var total, found int
		for token := range tokenSet(topic) {
			total++
			if docTokens[token] {
				found++
			}
		}
		if total == 0 {
			continue
		}
		if frac := float64(found) / float64(total); frac > best {
			best = frac
		}
	}
	return best
}

// tokenSet returns the lowercased, punctuation-stripped tokens of s with
// stop words removed.
func tokenSet(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalize.ForCompare(s)) {
		if !stopWords[tok] {
			tokens[tok] = true
		}
	}
	return tokens
}
