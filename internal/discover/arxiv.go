// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/digest-engine/internal/httputil"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Client *http.Client
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return "arxiv" }

// Discover queries arXiv for recent submissions matching the topics.
// The date window is applied client-side because the arXiv API date
// filter works on update time, not submission time.
func (b *ArxivBackend) Discover(ctx context.Context, topics []string, window Window, cfg types.DiscoveryConfig) ([]types.CandidateDocument, error) {
	q := buildArxivQuery(topics)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var docs []types.CandidateDocument
	for _, entry := range feed.Entries {
		id := arxivIDFromURL(entry.ID)
		if id == "" {
			continue
		}

		doc := types.CandidateDocument{
			RawID:       id,
			Title:       strings.TrimSpace(entry.Title),
			Abstract:    strings.TrimSpace(entry.Summary),
			Source:      "arxiv",
			Published:   entry.Published,
			URL:         "https://arxiv.org/abs/" + id,
			PDFURL:      "https://arxiv.org/pdf/" + id,
			ExternalIDs: map[string]string{"arxiv": id},
		}

		for _, a := range entry.Authors {
			doc.Authors = append(doc.Authors, strings.TrimSpace(a.Name))
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			doc.Date = t
			if !inWindow(t, window) {
				continue
			}
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

// buildArxivQuery constructs the search_query parameter from the topics.
func buildArxivQuery(topics []string) string {
	var parts []string
	for _, topic := range topics {
		terms := strings.Fields(topic)
		if len(terms) > 0 {
			parts = append(parts, "all:"+strings.Join(terms, "+"))
		}
	}
	return strings.Join(parts, "+OR+")
}

func inWindow(t time.Time, w Window) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// arxivIDFromURL pulls the versioned arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1"). The
// version suffix is kept here; fingerprinting strips it.
func arxivIDFromURL(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return idURL[idx+len(prefix):]
}
