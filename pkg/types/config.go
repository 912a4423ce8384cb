// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration marks configuration errors detected before any
// document is processed. A run never starts with an invalid configuration.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "digest-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DiscoveryConfig holds settings for the discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the per-backend result cap (default 25).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// EnableArxiv controls whether the arXiv backend is queried.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableCrossref controls whether the Crossref backend is queried.
	EnableCrossref bool `json:"enable_crossref" yaml:"enable_crossref"`

	// CrossrefEmail is sent as the mailto parameter for polite pool access.
	CrossrefEmail string `json:"crossref_email,omitempty" yaml:"crossref_email,omitempty"`

	// BackfillDays extends the discovery date window into the past (default 2).
	BackfillDays int `json:"backfill_days" yaml:"backfill_days"`
}

// Weights holds the non-negative combination weights for the four scoring
// signals. Weights need not sum to 1; the ranker does not renormalize.
type Weights struct {
	Relevance   float64 `json:"relevance" yaml:"relevance"`
	Recency     float64 `json:"recency" yaml:"recency"`
	Credibility float64 `json:"credibility" yaml:"credibility"`
	Novelty     float64 `json:"novelty" yaml:"novelty"`
}

// DedupConfig holds settings for duplicate grouping.
type DedupConfig struct {
	// RequireStrongAgreement, when set, prevents a fuzzy title_author link
	// from merging two documents that each carry a strong identifier
	// (DOI or arXiv ID) without sharing one.
	RequireStrongAgreement bool `json:"require_strong_agreement" yaml:"require_strong_agreement"`
}

// ScoringConfig holds settings for the signal scorers and the ranker.
type ScoringConfig struct {
	Weights Weights `json:"weights" yaml:"weights"`

	// RelevanceFloor excludes documents scoring strictly below it (default 0.6).
	RelevanceFloor float64 `json:"relevance_floor" yaml:"relevance_floor"`

	// RecencyHalfLifeDays sets the exponential decay half-life (default 7).
	RecencyHalfLifeDays float64 `json:"recency_half_life_days" yaml:"recency_half_life_days"`

	// RecencyDefault is the score for documents with no publication date
	// (default 0: unknown dates are treated as maximally stale).
	RecencyDefault float64 `json:"recency_default" yaml:"recency_default"`

	// CredibilityDefault is the score for sources absent from the
	// reputation table (default 0.5, neutral).
	CredibilityDefault float64 `json:"credibility_default" yaml:"credibility_default"`

	// NoveltyThreshold is the title token-set Jaccard similarity above
	// which two documents count as near duplicates (default 0.6).
	NoveltyThreshold float64 `json:"novelty_threshold" yaml:"novelty_threshold"`

	// SourceReputation maps lowercased source names to credibility in [0, 1].
	SourceReputation map[string]float64 `json:"source_reputation,omitempty" yaml:"source_reputation,omitempty"`

	// OracleTimeout bounds each similarity oracle call (default 10s).
	// On timeout the keyword-overlap fallback is used for that document.
	OracleTimeout time.Duration `json:"oracle_timeout" yaml:"oracle_timeout"`

	// OracleWorkers bounds concurrent oracle calls (default 4).
	OracleWorkers int `json:"oracle_workers" yaml:"oracle_workers"`

	// MaxTextLen truncates title+abstract text sent to the oracle (default 4000).
	MaxTextLen int `json:"max_text_len" yaml:"max_text_len"`
}

// StorageConfig holds settings for the history store.
type StorageConfig struct {
	// DataDir is the base directory for the history database (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// RecentWindowDays bounds the history window supplied to the novelty
	// scorer (default 14).
	RecentWindowDays int `json:"recent_window_days" yaml:"recent_window_days"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Dedup     DedupConfig     `json:"dedup" yaml:"dedup"`
	Scoring   ScoringConfig   `json:"scoring" yaml:"scoring"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
}

// Validate checks the scoring configuration. It is called once at pipeline
// start; a failure aborts the run before any document is processed.
func (c ScoringConfig) Validate() error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"relevance", c.Weights.Relevance},
		{"recency", c.Weights.Recency},
		{"credibility", c.Weights.Credibility},
		{"novelty", c.Weights.Novelty},
	} {
		if w.value < 0 {
			return fmt.Errorf("%w: %s weight is negative (%g)", ErrInvalidConfiguration, w.name, w.value)
		}
	}
	if c.RelevanceFloor < 0 || c.RelevanceFloor > 1 {
		return fmt.Errorf("%w: relevance floor %g outside [0, 1]", ErrInvalidConfiguration, c.RelevanceFloor)
	}
	if c.RecencyHalfLifeDays <= 0 {
		return fmt.Errorf("%w: recency half-life must be positive (%g days)", ErrInvalidConfiguration, c.RecencyHalfLifeDays)
	}
	if c.RecencyDefault < 0 || c.RecencyDefault > 1 {
		return fmt.Errorf("%w: recency default %g outside [0, 1]", ErrInvalidConfiguration, c.RecencyDefault)
	}
	if c.CredibilityDefault < 0 || c.CredibilityDefault > 1 {
		return fmt.Errorf("%w: credibility default %g outside [0, 1]", ErrInvalidConfiguration, c.CredibilityDefault)
	}
	if c.NoveltyThreshold < 0 || c.NoveltyThreshold > 1 {
		return fmt.Errorf("%w: novelty threshold %g outside [0, 1]", ErrInvalidConfiguration, c.NoveltyThreshold)
	}
	for source, score := range c.SourceReputation {
		if score < 0 || score > 1 {
			return fmt.Errorf("%w: reputation for %q is %g, outside [0, 1]", ErrInvalidConfiguration, source, score)
		}
	}
	return nil
}

// Validate checks every stage configuration.
func (c PipelineConfig) Validate() error {
	return c.Scoring.Validate()
}

// DefaultScoring returns the scoring configuration used when no config file
// overrides it. Weights follow the stock relevance-heavy profile.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Weights: Weights{
			Relevance:   0.35,
			Recency:     0.25,
			Credibility: 0.20,
			Novelty:     0.20,
		},
		RelevanceFloor:      0.6,
		RecencyHalfLifeDays: 7,
		RecencyDefault:      0,
		CredibilityDefault:  0.5,
		NoveltyThreshold:    0.6,
		OracleTimeout:       10 * time.Second,
		OracleWorkers:       4,
		MaxTextLen:          4000,
	}
}
