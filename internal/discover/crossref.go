// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/digest-engine/internal/httputil"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefBackend queries the Crossref REST API.
type CrossrefBackend struct {
	Client *http.Client
	// Email is sent as the mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *CrossrefBackend) Name() string { return "crossref" }

// Discover queries Crossref for works matching the topics within the
// publication date window.
func (b *CrossrefBackend) Discover(ctx context.Context, topics []string, window Window, cfg types.DiscoveryConfig) ([]types.CandidateDocument, error) {
	query := strings.Join(topics, " ")
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Crossref query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 25
	}

	params := url.Values{
		"query": {query},
		"rows":  {fmt.Sprintf("%d", maxResults)},
		"sort":  {"published"},
		"order": {"desc"},
	}

	var filters []string
	if !window.From.IsZero() {
		filters = append(filters, "from-pub-date:"+window.From.Format("2006-01-02"))
	}
	if !window.To.IsZero() {
		filters = append(filters, "until-pub-date:"+window.To.Format("2006-01-02"))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	reqURL := crossrefAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Crossref API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Crossref API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing Crossref response: %w", err)
	}

	var docs []types.CandidateDocument
	for _, work := range cr.Message.Items {
		if len(work.Title) == 0 {
			continue
		}

		doc := types.CandidateDocument{
			RawID:    work.DOI,
			Title:    work.Title[0],
			Abstract: stripJATS(work.Abstract),
			Source:   crossrefSource(work),
			URL:      work.URL,
		}
		if work.DOI != "" {
			doc.ExternalIDs = map[string]string{"doi": work.DOI}
		}

		for _, a := range work.Authors {
			name := strings.TrimSpace(a.Given + " " + a.Family)
			if name != "" {
				doc.Authors = append(doc.Authors, name)
			}
		}

		if parts := work.Published.DateParts; len(parts) > 0 {
			doc.Published = joinDateParts(parts[0])
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

// crossrefSource prefers the container title (journal name) over the
// generic registry name, since credibility is keyed by publication.
func crossrefSource(w crossrefWork) string {
	if len(w.ContainerTitle) > 0 && w.ContainerTitle[0] != "" {
		return w.ContainerTitle[0]
	}
	return "crossref"
}

// joinDateParts renders Crossref date-parts ([year, month, day], possibly
// truncated) as "2025-01-15", "2025-01", or "2025" for the normalizer.
func joinDateParts(parts []int) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%04d", parts[0])
	case 2:
		return fmt.Sprintf("%04d-%02d", parts[0], parts[1])
	default:
		return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2])
	}
}

// stripJATS removes the JATS XML tags Crossref wraps abstracts in.
func stripJATS(s string) string {
	for {
		open := strings.Index(s, "<")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], ">")
		if end < 0 {
			break
		}
		s = s[:open] + " " + s[open+end+1:]
	}
	return strings.Join(strings.Fields(s), " ")
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Abstract       string           `json:"abstract"`
	URL            string           `json:"URL"`
	Authors        []crossrefAuthor `json:"author"`
	Published      crossrefDate     `json:"published"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
