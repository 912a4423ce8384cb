// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the digest-engine pipeline:
// candidate documents discovered from academic APIs and feeds, duplicate
// groups produced by fingerprint matching, scored documents produced by the
// signal scorers, and the configuration consumed by every stage.
package types

import "time"

// Scheme identifies a fingerprint key family. Stronger schemes (DOI, arXiv)
// come from authoritative identifiers; TitleAuthor is a fuzzy fallback.
type Scheme string

const (
	SchemeDOI         Scheme = "doi"
	SchemeArxiv       Scheme = "arxiv_id"
	SchemeTitleAuthor Scheme = "title_author"
)

// Strong reports whether the scheme is backed by an authoritative identifier
// rather than a fuzzy title hash.
func (s Scheme) Strong() bool {
	return s == SchemeDOI || s == SchemeArxiv
}

// Fingerprint is a (scheme, value) duplicate-detection key. Two documents
// sharing a fingerprint are considered the same underlying item.
type Fingerprint struct {
	Scheme Scheme `json:"scheme" yaml:"scheme"`
	Value  string `json:"value" yaml:"value"`
}

// Key returns the map key form "scheme:value".
func (f Fingerprint) Key() string {
	return string(f.Scheme) + ":" + f.Value
}

// CandidateDocument is a single discovered item before duplicate resolution.
// Any field except Title may be empty; documents without a title are dropped
// during normalization.
type CandidateDocument struct {
	// RawID is the opaque identifier assigned by the source, if any.
	RawID string `json:"raw_id,omitempty" yaml:"raw_id,omitempty"`

	// ExternalIDs maps identifier scheme names ("doi", "arxiv") to values.
	ExternalIDs map[string]string `json:"external_ids,omitempty" yaml:"external_ids,omitempty"`

	// Title is the document title with display case preserved.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract or summary text.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// FullText is the extracted body text when a scraper supplied one.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Source names the origin (e.g. "arxiv", "crossref", a journal name).
	Source string `json:"source" yaml:"source"`

	// Published is the publication date string as supplied by the source.
	// The normalizer parses it into Date; Published is kept for audit.
	Published string `json:"published,omitempty" yaml:"published,omitempty"`

	// Date is the normalized publication timestamp; zero when unknown.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`

	// URL is the landing page for the item.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct PDF locator, if the source exposes one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
}

// Completeness counts the informative fields present: title, abstract,
// authors, date, and at least one external identifier. Used to pick the
// best representative of a duplicate group.
func (d CandidateDocument) Completeness() int {
	n := 0
	if d.Title != "" {
		n++
	}
	if d.Abstract != "" {
		n++
	}
	if len(d.Authors) > 0 {
		n++
	}
	if !d.Date.IsZero() {
		n++
	}
	for _, v := range d.ExternalIDs {
		if v != "" {
			n++
			break
		}
	}
	return n
}

// DuplicateGroup is a set of candidate documents transitively linked by
// shared fingerprints. Canonical is the most complete member; Members holds
// the full set (canonical included) for audit.
type DuplicateGroup struct {
	Canonical CandidateDocument   `json:"canonical" yaml:"canonical"`
	Members   []CandidateDocument `json:"members" yaml:"members"`
}

// SignalScores holds the four independent scoring signals, each in [0, 1].
type SignalScores struct {
	Relevance   float64 `json:"relevance" yaml:"relevance"`
	Recency     float64 `json:"recency" yaml:"recency"`
	Credibility float64 `json:"credibility" yaml:"credibility"`
	Novelty     float64 `json:"novelty" yaml:"novelty"`

	// RelevanceFallback is set when the similarity oracle was unavailable
	// and the keyword-overlap fallback produced the relevance score.
	RelevanceFallback bool `json:"relevance_fallback,omitempty" yaml:"relevance_fallback,omitempty"`
}

// ScoredDocument is a canonical document plus its signal scores, fingerprints,
// and the weighted total computed by the ranker.
type ScoredDocument struct {
	Document     CandidateDocument `json:"document" yaml:"document"`
	Fingerprints []Fingerprint     `json:"fingerprints" yaml:"fingerprints"`
	Scores       SignalScores      `json:"scores" yaml:"scores"`
	Total        float64           `json:"total" yaml:"total"`

	// Repeat marks a document an earlier run already recorded.
	Repeat bool `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// PrimaryFingerprint returns the strongest fingerprint of the document,
// used as its stable identity in ordering tie-breaks.
func (s ScoredDocument) PrimaryFingerprint() Fingerprint {
	if len(s.Fingerprints) == 0 {
		return Fingerprint{}
	}
	return s.Fingerprints[0]
}
