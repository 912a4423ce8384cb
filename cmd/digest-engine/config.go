// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/digest-engine/pkg/types"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "digest-engine/0.1"
	defaultMaxResults = 25
	defaultBackfill   = 2
)

// pipelineConfig assembles the full pipeline configuration from viper,
// falling back to the stock defaults for anything the config file omits.
func pipelineConfig() (types.PipelineConfig, error) {
	scoring, err := scoringConfig()
	if err != nil {
		return types.PipelineConfig{}, err
	}
	return types.PipelineConfig{
		Discovery: discoveryConfig(),
		Dedup: types.DedupConfig{
			RequireStrongAgreement: viper.GetBool("dedup.require_strong_agreement"),
		},
		Scoring: scoring,
		Storage: storageConfig(),
	}, nil
}

func discoveryConfig() types.DiscoveryConfig {
	cfg := types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		MaxResults:     defaultMaxResults,
		EnableArxiv:    true,
		EnableCrossref: true,
		CrossrefEmail:  secretDefault("crossref-email", viper.GetString("discovery.crossref_email")),
		BackfillDays:   defaultBackfill,
	}
	if viper.IsSet("discovery.timeout") {
		cfg.Timeout = viper.GetDuration("discovery.timeout")
	}
	if viper.IsSet("discovery.max_results") {
		cfg.MaxResults = viper.GetInt("discovery.max_results")
	}
	if viper.IsSet("discovery.enable_arxiv") {
		cfg.EnableArxiv = viper.GetBool("discovery.enable_arxiv")
	}
	if viper.IsSet("discovery.enable_crossref") {
		cfg.EnableCrossref = viper.GetBool("discovery.enable_crossref")
	}
	if viper.IsSet("discovery.backfill_days") {
		cfg.BackfillDays = viper.GetInt("discovery.backfill_days")
	}
	return cfg
}

func scoringConfig() (types.ScoringConfig, error) {
	cfg := types.DefaultScoring()

	if viper.IsSet("scoring.weights.relevance") {
		cfg.Weights.Relevance = viper.GetFloat64("scoring.weights.relevance")
	}
	if viper.IsSet("scoring.weights.recency") {
		cfg.Weights.Recency = viper.GetFloat64("scoring.weights.recency")
	}
	if viper.IsSet("scoring.weights.credibility") {
		cfg.Weights.Credibility = viper.GetFloat64("scoring.weights.credibility")
	}
	if viper.IsSet("scoring.weights.novelty") {
		cfg.Weights.Novelty = viper.GetFloat64("scoring.weights.novelty")
	}
	if viper.IsSet("scoring.relevance_floor") {
		cfg.RelevanceFloor = viper.GetFloat64("scoring.relevance_floor")
	}
	if viper.IsSet("scoring.recency_half_life_days") {
		cfg.RecencyHalfLifeDays = viper.GetFloat64("scoring.recency_half_life_days")
	}
	if viper.IsSet("scoring.recency_default") {
		cfg.RecencyDefault = viper.GetFloat64("scoring.recency_default")
	}
	if viper.IsSet("scoring.credibility_default") {
		cfg.CredibilityDefault = viper.GetFloat64("scoring.credibility_default")
	}
	if viper.IsSet("scoring.novelty_threshold") {
		cfg.NoveltyThreshold = viper.GetFloat64("scoring.novelty_threshold")
	}
	if viper.IsSet("scoring.oracle_timeout") {
		cfg.OracleTimeout = viper.GetDuration("scoring.oracle_timeout")
	}
	if viper.IsSet("scoring.oracle_workers") {
		cfg.OracleWorkers = viper.GetInt("scoring.oracle_workers")
	}
	if viper.IsSet("scoring.max_text_len") {
		cfg.MaxTextLen = viper.GetInt("scoring.max_text_len")
	}

	// Viper flattens nested maps to map[string]string, so reputation
	// scores arrive as strings and are parsed here.
	if raw := viper.GetStringMapString("scoring.source_reputation"); len(raw) > 0 {
		cfg.SourceReputation = make(map[string]float64, len(raw))
		for source, v := range raw {
			score, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("%w: reputation for %q is not a number: %q",
					types.ErrInvalidConfiguration, source, v)
			}
			cfg.SourceReputation[source] = score
		}
	}

	return cfg, nil
}

func storageConfig() types.StorageConfig {
	cfg := types.StorageConfig{
		DataDir:          "data",
		RecentWindowDays: 14,
	}
	if viper.IsSet("storage.data_dir") {
		cfg.DataDir = viper.GetString("storage.data_dir")
	}
	if viper.IsSet("storage.recent_window_days") {
		cfg.RecentWindowDays = viper.GetInt("storage.recent_window_days")
	}
	return cfg
}
