// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"testing"
	"time"

	"github.com/pdiddy/digest-engine/pkg/types"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestGroupCoverage(t *testing.T) {
	docs := []types.CandidateDocument{
		{Title: "Paper A", ExternalIDs: map[string]string{"doi": "10.1/a"}},
		{Title: "Paper B"},
		{Title: "Paper A", ExternalIDs: map[string]string{"doi": "10.1/a"}},
	}

	groups := Group(docs, types.DedupConfig{})
	total := 0
	for _, g := range groups {
		total += len(g.Members)
	}
	if total != len(docs) {
		t.Errorf("members across groups = %d, want %d", total, len(docs))
	}
	if len(groups) != 2 {
		t.Errorf("len(groups) = %d, want 2", len(groups))
	}
}

func TestGroupTransitive(t *testing.T) {
	// A and B share a DOI; B and C share a title+author key; A and C share
	// nothing directly. All three must land in one group.
	docs := []types.CandidateDocument{
		{Title: "Graph Neural Networks in Biology", Authors: []string{"Jane Doe"}, ExternalIDs: map[string]string{"doi": "10.1/gnn"}},
		{Title: "Completely Different Listing Title", Authors: []string{"Jane Doe"}, ExternalIDs: map[string]string{"doi": "10.1/gnn"}},
		{Title: "Completely Different Listing Title", Authors: []string{"Jane Doe"}},
	}

	groups := Group(docs, types.DedupConfig{})
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 (transitive closure)", len(groups))
	}
	if len(groups[0].Members) != 3 {
		t.Errorf("len(members) = %d, want 3", len(groups[0].Members))
	}
}

func TestGroupArxivVersionsMerge(t *testing.T) {
	v1 := types.CandidateDocument{
		Title:       "Scaling Laws Revisited",
		Source:      "arxiv",
		ExternalIDs: map[string]string{"arxiv": "2501.01234v1"},
	}
	v2 := types.CandidateDocument{
		Title:       "Scaling Laws Revisited",
		Abstract:    "The revised abstract.",
		Authors:     []string{"Jane Doe"},
		Source:      "arxiv",
		Date:        day(2025, 1, 10),
		ExternalIDs: map[string]string{"arxiv": "2501.01234v2"},
	}

	groups := Group([]types.CandidateDocument{v1, v2}, types.DedupConfig{})
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1 (versions collapse)", len(groups))
	}
	if groups[0].Canonical.Abstract != v2.Abstract {
		t.Error("canonical should be the more complete v2 record")
	}
}

func TestGroupIdempotent(t *testing.T) {
	docs := []types.CandidateDocument{
		{Title: "Alpha", Authors: []string{"Doe"}, ExternalIDs: map[string]string{"doi": "10.1/alpha"}},
		{Title: "Beta", Authors: []string{"Smith"}, ExternalIDs: map[string]string{"doi": "10.1/beta"}},
	}

	groups := Group(docs, types.DedupConfig{})
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}

	again := Group(Canonicals(groups), types.DedupConfig{})
	if len(again) != 2 {
		t.Fatalf("re-dedup len = %d, want 2", len(again))
	}
	for i := range again {
		if again[i].Canonical.Title != groups[i].Canonical.Title {
			t.Errorf("group %d canonical changed on re-dedup", i)
		}
	}
}

func TestCanonicalDeterministicUnderPermutation(t *testing.T) {
	a := types.CandidateDocument{Title: "Same Work", Source: "crossref", Date: day(2025, 2, 1), Authors: []string{"Doe"}, ExternalIDs: map[string]string{"doi": "10.1/w"}}
	b := types.CandidateDocument{Title: "Same Work", Source: "arxiv", Date: day(2025, 1, 1), Authors: []string{"Doe"}, ExternalIDs: map[string]string{"doi": "10.1/w"}}
	c := types.CandidateDocument{Title: "Same Work", Source: "pubmed", Date: day(2025, 1, 1), Authors: []string{"Doe"}, ExternalIDs: map[string]string{"doi": "10.1/w"}}

	perms := [][]types.CandidateDocument{
		{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b},
	}
	var want string
	for i, perm := range perms {
		groups := Group(perm, types.DedupConfig{})
		if len(groups) != 1 {
			t.Fatalf("perm %d: len(groups) = %d, want 1", i, len(groups))
		}
		// Equal completeness and dates for b and c: source ascending picks arxiv.
		got := groups[0].Canonical.Source
		if i == 0 {
			want = got
		} else if got != want {
			t.Errorf("perm %d: canonical source = %q, want %q", i, got, want)
		}
	}
	if want != "arxiv" {
		t.Errorf("canonical source = %q, want arxiv (earliest date, then source asc)", want)
	}
}

func TestCanonicalPrefersCompleteness(t *testing.T) {
	sparse := types.CandidateDocument{Title: "Work", Source: "aaa", ExternalIDs: map[string]string{"doi": "10.1/w"}}
	rich := types.CandidateDocument{
		Title: "Work", Abstract: "text", Authors: []string{"Doe"}, Source: "zzz",
		Date: day(2025, 3, 1), ExternalIDs: map[string]string{"doi": "10.1/w"},
	}

	groups := Group([]types.CandidateDocument{sparse, rich}, types.DedupConfig{})
	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if groups[0].Canonical.Source != "zzz" {
		t.Error("completeness must dominate source ordering")
	}
}

func TestStrongAgreementPolicy(t *testing.T) {
	// Same title and author but different DOIs: a generic title plus a
	// common surname is exactly the false-merge case the policy guards.
	a := types.CandidateDocument{Title: "A Survey of Methods", Authors: []string{"Jane Smith"}, ExternalIDs: map[string]string{"doi": "10.1/one"}}
	b := types.CandidateDocument{Title: "A Survey of Methods", Authors: []string{"John Smith"}, ExternalIDs: map[string]string{"doi": "10.2/two"}}

	merged := Group([]types.CandidateDocument{a, b}, types.DedupConfig{})
	if len(merged) != 1 {
		t.Fatalf("default policy: len(groups) = %d, want 1", len(merged))
	}

	kept := Group([]types.CandidateDocument{a, b}, types.DedupConfig{RequireStrongAgreement: true})
	if len(kept) != 2 {
		t.Fatalf("strong-agreement policy: len(groups) = %d, want 2", len(kept))
	}
}

func TestGroupEmptyInput(t *testing.T) {
	if groups := Group(nil, types.DedupConfig{}); len(groups) != 0 {
		t.Errorf("len(groups) = %d, want 0", len(groups))
	}
}
