// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/digest-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the run history store",
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List documents ranked within the recent window",
	Long: `Recent lists the documents recorded by past runs that still fall inside
the recent window. These are the documents the novelty scorer penalizes
repeats of.`,
	RunE: runHistoryRecent,
}

func init() {
	historyRecentCmd.Flags().Bool("json", false, "output documents as JSON")

	historyCmd.AddCommand(historyRecentCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryRecent(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	store, err := history.NewStore(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer store.Close()

	docs, err := store.RecentWindow(context.Background())
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents in the recent window.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-64s  %-10s  %s\n", "#", "Title", "Date", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))
	for i, doc := range docs {
		date := ""
		if !doc.Date.IsZero() {
			date = doc.Date.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-64s  %-10s  %s\n", i+1, truncateTitle(doc.Title, 64), date, doc.Source)
	}
	fmt.Fprintf(os.Stdout, "\n%d documents\n", len(docs))
	return nil
}
