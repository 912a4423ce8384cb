// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FormatTable writes the ranked results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	if len(out.Ranked) == 0 {
		fmt.Fprintln(w, "No documents above the relevance floor.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-56s  %-20s  %-10s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Date", "Score", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for i, r := range out.Ranked {
		title := truncate(r.Document.Title, 56)
		date := ""
		if !r.Document.Date.IsZero() {
			date = r.Document.Date.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-4d  %-56s  %-20s  %-10s  %-6.2f  %s\n",
			i+1, title, formatAuthors(r.Document.Authors), date, r.Total, r.Document.Source)
	}

	fmt.Fprintf(w, "\n%d documents", len(out.Ranked))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	if out.Repeats > 0 {
		fmt.Fprintf(w, " (%d seen in earlier runs)", out.Repeats)
	}
	if len(out.Dropped) > 0 {
		fmt.Fprintf(w, " (%d dropped)", len(out.Dropped))
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the ranked results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Ranked)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
