// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/digest-engine/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <run-file>",
	Short: "Render a previously saved run file",
	Long: `Inspect reads a YAML run file saved with --output and re-renders its
ranked results, without re-discovery or re-scoring.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	rf, err := pipeline.ReadRunFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Run of %s (topics: %s)\n",
		rf.Summary.Timestamp.Format("2006-01-02 15:04"), strings.Join(rf.Topics, ", "))

	out := rf.Output()
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return pipeline.FormatJSON(out, os.Stdout)
	}
	pipeline.FormatTable(out, os.Stdout)
	return nil
}
