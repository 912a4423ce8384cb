// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/digest-engine/internal/history"
	"github.com/pdiddy/digest-engine/internal/pipeline"
)

var rankCmd = &cobra.Command{
	Use:   "rank <batch-file>",
	Short: "Deduplicate, score, and rank documents from a YAML batch file",
	Long: `Rank runs the pipeline over documents supplied in a YAML batch file
instead of querying discovery backends. Topics come from the batch file or
from --topics. The run is not recorded in the history store unless
--record is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringSlice("topics", nil, "topics to score relevance against (overrides the batch file)")
	rankCmd.Flags().Bool("json", false, "output results as JSON")
	rankCmd.Flags().String("output", "", "also save the run to a YAML file")
	rankCmd.Flags().Bool("record", false, "record the run in the history store")
	rankCmd.Flags().Bool("no-history", false, "skip the history store entirely (no novelty context)")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	bf, err := pipeline.ReadBatchFile(args[0])
	if err != nil {
		return err
	}

	topics, _ := cmd.Flags().GetStringSlice("topics")
	if len(topics) == 0 {
		topics = bf.Topics
	}
	if len(topics) == 0 {
		return fmt.Errorf("no topics: set them in the batch file or pass --topics")
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := &http.Client{Timeout: cfg.Discovery.Timeout}

	in := pipeline.Input{
		Documents: bf.Documents,
		Topics:    topics,
		Oracle:    newOracle(client),
	}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	record, _ := cmd.Flags().GetBool("record")
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

	if record && store != nil {
		if _, err := store.SaveRun(ctx, topics, out.Ranked); err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
	}

	return emitOutput(cmd, topics, cfg.Scoring, out)
}
