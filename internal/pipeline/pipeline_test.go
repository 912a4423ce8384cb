// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/digest-engine/pkg/types"
)

func testConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{Scoring: types.DefaultScoring()}
	cfg.Scoring.RelevanceFloor = 0 // keep everything unless a test says otherwise
	return cfg
}

func testDocs() []types.CandidateDocument {
	return []types.CandidateDocument{
		{
			Title:       "Transformer Architectures for Protein Folding",
			Abstract:    "transformer architectures applied to protein folding prediction",
			Authors:     []string{"Ada Lovelace"},
			Source:      "arxiv",
			ExternalIDs: map[string]string{"doi": "10.1000/tf.1"},
			Date:        time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			// Same DOI as above: must merge into one group.
			Title:       "Transformer Architectures for Protein Folding (preprint)",
			Source:      "crossref",
			ExternalIDs: map[string]string{"doi": "10.1000/tf.1"},
		},
		{
			Title:    "Graph Neural Networks for Traffic Forecasting",
			Abstract: "graph neural networks forecasting urban traffic flows",
			Authors:  []string{"Grace Hopper"},
			Source:   "arxiv",
			Date:     time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestRunMergesDuplicatesAndRanks(t *testing.T) {
	in := Input{
		Documents: testDocs(),
		Topics:    []string{"transformer protein folding"},
	}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(out.Ranked) != 2 {
		t.Fatalf("ranked = %d, want 2 (duplicate pair merged)", len(out.Ranked))
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}
	if len(out.Groups) != 2 {
		t.Errorf("groups = %d, want 2", len(out.Groups))
	}

	// The on-topic transformer paper must outrank the traffic paper.
	if got := out.Ranked[0].Document.Title; !strings.Contains(got, "Transformer") {
		t.Errorf("top result = %q, want the transformer paper", got)
	}
	for i := 1; i < len(out.Ranked); i++ {
		if out.Ranked[i].Total > out.Ranked[i-1].Total {
			t.Errorf("rank %d total %.3f exceeds rank %d total %.3f",
				i+1, out.Ranked[i].Total, i, out.Ranked[i-1].Total)
		}
	}
}

func TestRunDropsTitlelessWithDiagnostic(t *testing.T) {
	docs := append(testDocs(), types.CandidateDocument{
		Source: "rss",
		URL:    "https://example.com/untitled",
	})
	out, err := Run(context.Background(), testConfig(), Input{Documents: docs}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Dropped) != 1 {
		t.Fatalf("dropped = %d, want 1", len(out.Dropped))
	}
	if out.Dropped[0].Source != "rss" {
		t.Errorf("dropped source = %q, want rss", out.Dropped[0].Source)
	}
	if out.Dropped[0].Reason == "" {
		t.Error("dropped diagnostic has no reason")
	}
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.Weights.Relevance = -1
	_, err := Run(context.Background(), cfg, Input{Documents: testDocs()}, zerolog.Nop())
	if !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestRunRelevanceFloor(t *testing.T) {
	cfg := testConfig()
	cfg.Scoring.RelevanceFloor = 0.99
	in := Input{
		Documents: testDocs(),
		Topics:    []string{"quantum chromodynamics lattice"},
	}
	out, err := Run(context.Background(), cfg, in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Ranked) != 0 {
		t.Errorf("ranked = %d, want 0 with floor 0.99 on off-topic docs", len(out.Ranked))
	}
}

func TestRunScoresRecencyAgainstSuppliedDate(t *testing.T) {
	// Recency-only weights make the totals a direct decay readout.
	cfg := testConfig()
	cfg.Scoring.Weights = types.Weights{Recency: 1}

	asOf := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	in := Input{
		Documents: []types.CandidateDocument{
			{Title: "Published Today", Source: "arxiv", Date: asOf},
			{Title: "Published One Half-Life Ago", Source: "arxiv", Date: asOf.AddDate(0, 0, -7)},
		},
		Topics: []string{"anything"},
		Now:    asOf,
	}
	out, err := Run(context.Background(), cfg, in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Ranked) != 2 {
		t.Fatalf("ranked = %d, want 2", len(out.Ranked))
	}
	if got := out.Ranked[0].Total; got != 1.0 {
		t.Errorf("total for document dated at the reference date = %v, want 1.0", got)
	}
	if got := out.Ranked[1].Total; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("total one half-life before the reference date = %v, want 0.5", got)
	}
}

type fakeSeen struct {
	known map[string]bool
	err   error
}

func (f fakeSeen) Seen(_ context.Context, fps []types.Fingerprint) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool)
	for _, fp := range fps {
		if f.known[fp.Key()] {
			out[fp.Key()] = true
		}
	}
	return out, nil
}

func TestRunMarksRepeats(t *testing.T) {
	in := Input{
		Documents: testDocs(),
		Topics:    []string{"transformer protein folding"},
		Seen:      fakeSeen{known: map[string]bool{"doi:10.1000/tf.1": true}},
	}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Repeats != 1 {
		t.Fatalf("Repeats = %d, want 1", out.Repeats)
	}
	for _, sd := range out.Ranked {
		want := sd.PrimaryFingerprint().Key() == "doi:10.1000/tf.1"
		if sd.Repeat != want {
			t.Errorf("Repeat = %v for %q, want %v", sd.Repeat, sd.Document.Title, want)
		}
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	if !strings.Contains(buf.String(), "1 seen in earlier runs") {
		t.Errorf("table missing repeat count:\n%s", buf.String())
	}
}

func TestRunSeenLookupFailureKeepsRun(t *testing.T) {
	in := Input{
		Documents: testDocs(),
		Topics:    []string{"transformer protein folding"},
		Seen:      fakeSeen{err: errors.New("database is locked")},
	}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Repeats != 0 {
		t.Errorf("Repeats = %d, want 0 when the lookup fails", out.Repeats)
	}
	if len(out.Ranked) != 2 {
		t.Errorf("ranked = %d, want 2 (lookup failure must not drop documents)", len(out.Ranked))
	}
}

func TestRunEmptyInput(t *testing.T) {
	out, err := Run(context.Background(), testConfig(), Input{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out.Ranked) != 0 || len(out.Groups) != 0 || len(out.Dropped) != 0 {
		t.Errorf("empty input produced non-empty output: %+v", out)
	}
}

func TestRunFileRoundTrip(t *testing.T) {
	in := Input{Documents: testDocs(), Topics: []string{"transformers"}}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := WriteRunFile(path, in.Topics, testConfig().Scoring, out); err != nil {
		t.Fatalf("WriteRunFile: %v", err)
	}
	rf, err := ReadRunFile(path)
	if err != nil {
		t.Fatalf("ReadRunFile: %v", err)
	}
	if len(rf.Results) != len(out.Ranked) {
		t.Errorf("reloaded %d results, want %d", len(rf.Results), len(out.Ranked))
	}
	if rf.Summary.DuplicatesRemoved != out.DupsRemoved {
		t.Errorf("reloaded DuplicatesRemoved = %d, want %d", rf.Summary.DuplicatesRemoved, out.DupsRemoved)
	}
	if len(rf.Topics) != 1 || rf.Topics[0] != "transformers" {
		t.Errorf("reloaded topics = %v", rf.Topics)
	}

	// A reloaded run re-renders through the same output type.
	reout := rf.Output()
	if len(reout.Ranked) != len(out.Ranked) {
		t.Errorf("reconstructed %d ranked, want %d", len(reout.Ranked), len(out.Ranked))
	}
	if reout.DupsRemoved != out.DupsRemoved || reout.Fallbacks != out.Fallbacks {
		t.Errorf("reconstructed summary = (%d, %d), want (%d, %d)",
			reout.DupsRemoved, reout.Fallbacks, out.DupsRemoved, out.Fallbacks)
	}

	var buf bytes.Buffer
	FormatTable(reout, &buf)
	if !strings.Contains(buf.String(), "1 duplicates removed") {
		t.Errorf("reconstructed table missing duplicate count:\n%s", buf.String())
	}
}

func TestReadBatchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	body := `topics:
  - machine learning
documents:
  - title: A Paper
    source: arxiv
    external_ids:
      doi: 10.1000/a.1
  - title: Another Paper
    source: crossref
`
	if err := writeFile(path, body); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	bf, err := ReadBatchFile(path)
	if err != nil {
		t.Fatalf("ReadBatchFile: %v", err)
	}
	if len(bf.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(bf.Documents))
	}
	if bf.Documents[0].ExternalIDs["doi"] != "10.1000/a.1" {
		t.Errorf("doi = %q", bf.Documents[0].ExternalIDs["doi"])
	}
	if len(bf.Topics) != 1 || bf.Topics[0] != "machine learning" {
		t.Errorf("topics = %v", bf.Topics)
	}
}

func TestReadBatchFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := writeFile(path, "documents: []\n"); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := ReadBatchFile(path); err == nil {
		t.Fatal("expected error for batch file with no documents")
	}
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}

func TestFormatTable(t *testing.T) {
	in := Input{Documents: testDocs(), Topics: []string{"transformer protein folding"}}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var buf bytes.Buffer
	FormatTable(out, &buf)
	got := buf.String()
	if !strings.Contains(got, "Rank") || !strings.Contains(got, "Transformer") {
		t.Errorf("table missing expected content:\n%s", got)
	}
	if !strings.Contains(got, "1 duplicates removed") {
		t.Errorf("table missing duplicate count:\n%s", got)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(Output{}, &buf)
	if !strings.Contains(buf.String(), "No documents") {
		t.Errorf("unexpected empty-table output: %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	in := Input{Documents: testDocs(), Topics: []string{"transformers"}}
	out, err := Run(context.Background(), testConfig(), in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var buf bytes.Buffer
	if err := FormatJSON(out, &buf); err != nil {
		t.Fatalf("FormatJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"total"`) {
		t.Errorf("JSON output missing total field:\n%s", buf.String())
	}
}
