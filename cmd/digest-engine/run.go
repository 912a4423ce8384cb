// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/digest-engine/internal/discover"
	"github.com/pdiddy/digest-engine/internal/history"
	"github.com/pdiddy/digest-engine/internal/pipeline"
	"github.com/pdiddy/digest-engine/internal/score"
	"github.com/pdiddy/digest-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [topics...]",
	Short: "Discover, deduplicate, score, and rank documents for the given topics",
	Long: `Run executes the full digest pipeline: query the enabled discovery
backends for documents matching the topics, merge duplicates by fingerprint,
score each survivor on relevance, recency, credibility, and novelty, and
print the ranked digest. The run is recorded in the history store so later
runs can penalize repeats.

Relevance uses OpenAI embeddings when an openai-api-key secret is present,
falling back to keyword overlap otherwise.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Bool("json", false, "output results as JSON")
	runCmd.Flags().String("output", "", "also save the run to a YAML file")
	runCmd.Flags().Bool("no-history", false, "skip the history store (no novelty context, run not recorded)")
	runCmd.Flags().String("date", "", "rank as of this date (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more topics")
	}
	topics := args

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	asOf := time.Now()
	if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
		asOf, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", dateStr, err)
		}
	}

	client := &http.Client{Timeout: cfg.Discovery.Timeout}
	ctx := context.Background()

	backends := discover.Backends(cfg.Discovery, client)
	window := discover.WindowEndingAt(asOf, cfg.Discovery.BackfillDays)
	discovered, err := discover.Discover(ctx, topics, backends, window, cfg.Discovery, log)
	if err != nil {
		return err
	}
	log.Info().Int("documents", len(discovered.Documents)).
		Int("backend_errors", len(discovered.BackendErrors)).
		Msg("discovery complete")

	in := pipeline.Input{
		Documents: discovered.Documents,
		Topics:    topics,
		Oracle:    newOracle(client),
		Now:       asOf,
	}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	var store *history.Store
	if !noHistory {
		store, err = history.NewStore(cfg.Storage, log)
		if err != nil {
			return err
		}
		defer store.Close()

		in.History, err = store.RecentWindow(ctx)
		if err != nil {
			return err
		}
		in.Seen = store
	}

	out, err := pipeline.Run(ctx, cfg, in, log)
	if err != nil {
		return err
	}

	if store != nil {
		runID, err := store.SaveRun(ctx, topics, out.Ranked)
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		log.Debug().Int64("run_id", runID).Msg("run recorded")
	}

	return emitOutput(cmd, topics, cfg.Scoring, out)
}

// newOracle builds the embedding oracle when an API key is available, or
// returns nil so scoring uses the keyword fallback.
func newOracle(client *http.Client) score.Oracle {
	apiKey := secretDefault("openai-api-key", viper.GetString("openai.api_key"))
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil
	}
	return score.NewEmbeddingOracle(client, apiKey, viper.GetString("openai.model"))
}

// emitOutput writes the run in the requested formats. Shared by run and rank.
func emitOutput(cmd *cobra.Command, topics []string, scoring types.ScoringConfig, out pipeline.Output) error {
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		if err := pipeline.WriteRunFile(path, topics, scoring, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Run saved to %s\n", path)
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return pipeline.FormatJSON(out, os.Stdout)
	}
	pipeline.FormatTable(out, os.Stdout)
	return nil
}
