// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/digest-engine/internal/discover"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [topics...]",
	Short: "Query discovery backends without scoring or ranking",
	Long: `Discover queries the enabled backends (arXiv, Crossref) for documents
matching the topics and prints the raw candidates. Useful for inspecting
what the pipeline would see before deduplication and scoring.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Bool("json", false, "output documents as JSON")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more topics")
	}

	cfg, err := pipelineConfig()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.Discovery.Timeout}
	backends := discover.Backends(cfg.Discovery, client)
	window := discover.WindowEndingAt(time.Now(), cfg.Discovery.BackfillDays)

	out, err := discover.Discover(context.Background(), args, backends, window, cfg.Discovery, log)
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Documents)
	}

	for i, doc := range out.Documents {
		date := ""
		if !doc.Date.IsZero() {
			date = doc.Date.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-64s  %-10s  %s\n", i+1, truncateTitle(doc.Title, 64), date, doc.Source)
	}
	fmt.Fprintf(os.Stdout, "\n%d documents", len(out.Documents))
	if len(out.BackendErrors) > 0 {
		fmt.Fprintf(os.Stdout, " (backend errors: %s)", strings.Join(out.BackendErrors, "; "))
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
