// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fingerprint

import (
	"testing"

	"github.com/pdiddy/digest-engine/pkg/types"
)

func TestGenerateAllSchemes(t *testing.T) {
	doc := types.CandidateDocument{
		Title:       "Attention Is All You Need",
		Authors:     []string{"Ashish Vaswani"},
		ExternalIDs: map[string]string{"doi": "10.5555/3295222", "arxiv": "1706.03762v5"},
	}

	fps := Generate(doc)
	if len(fps) != 3 {
		t.Fatalf("len(fps) = %d, want 3", len(fps))
	}
	if fps[0].Scheme != types.SchemeDOI || fps[0].Value != "10.5555/3295222" {
		t.Errorf("fps[0] = %+v", fps[0])
	}
	if fps[1].Scheme != types.SchemeArxiv || fps[1].Value != "1706.03762" {
		t.Errorf("fps[1] = %+v, want version-stripped arXiv ID", fps[1])
	}
	if fps[2].Scheme != types.SchemeTitleAuthor || fps[2].Value == "" {
		t.Errorf("fps[2] = %+v", fps[2])
	}
}

func TestGenerateTitleOnlyNeverEmpty(t *testing.T) {
	fps := Generate(types.CandidateDocument{Title: "Untitled Memo"})
	if len(fps) != 1 {
		t.Fatalf("len(fps) = %d, want 1", len(fps))
	}
	if fps[0].Scheme != types.SchemeTitleAuthor {
		t.Errorf("scheme = %q, want title_author", fps[0].Scheme)
	}
}

func TestTitleAuthorKeyInsensitiveToPunctuationAndCase(t *testing.T) {
	a := Generate(types.CandidateDocument{Title: "Attention Is All You Need!", Authors: []string{"Ashish Vaswani"}})
	b := Generate(types.CandidateDocument{Title: "attention is all you need", Authors: []string{"A. Vaswani"}})
	if a[0].Value != b[0].Value {
		t.Error("same title and surname should share a title_author fingerprint")
	}
}

func TestTitleAuthorKeyDistinguishesAuthors(t *testing.T) {
	a := Generate(types.CandidateDocument{Title: "A Survey", Authors: []string{"Jane Doe"}})
	b := Generate(types.CandidateDocument{Title: "A Survey", Authors: []string{"John Smith"}})
	if a[0].Value == b[0].Value {
		t.Error("different first-author surnames should split the fingerprint")
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase and strip space", " 10.1000/ABC ", "10.1000/abc"},
		{"resolver prefix", "https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.in); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeArxivID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "2301.07041", "2301.07041"},
		{"version stripped", "2301.07041v2", "2301.07041"},
		{"prefix stripped", "arXiv:2301.07041v12", "2301.07041"},
		{"five digit suffix", "2501.01234", "2501.01234"},
		{"not an arxiv id", "10.1000/xyz", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeArxivID(tt.in); got != tt.want {
				t.Errorf("NormalizeArxivID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
