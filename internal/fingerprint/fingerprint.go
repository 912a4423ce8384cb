// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fingerprint derives duplicate-detection keys from normalized
// candidate documents. A document yields one fingerprint per applicable
// scheme, ordered strongest first: DOI, then arXiv ID, then the fuzzy
// title+author hash that every titled document has.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/digest-engine/internal/normalize"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// arxivPattern matches arXiv IDs with an optional prefix and version
// suffix: "2301.07041", "arXiv:2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5})(?:v\d+)?$`)

// titleWordLimit bounds the number of title words hashed into the fuzzy
// key, so subtitle variations past the head of the title do not split
// otherwise identical documents.
const titleWordLimit = 10

// Generate returns the fingerprints for a normalized document, strongest
// scheme first. The title_author fingerprint is always present, so the
// result is never empty for a document that survived normalization.
func Generate(doc types.CandidateDocument) []types.Fingerprint {
	var fps []types.Fingerprint

	if doi := NormalizeDOI(doc.ExternalIDs["doi"]); doi != "" {
		fps = append(fps, types.Fingerprint{Scheme: types.SchemeDOI, Value: doi})
	}
	if id := NormalizeArxivID(doc.ExternalIDs["arxiv"]); id != "" {
		fps = append(fps, types.Fingerprint{Scheme: types.SchemeArxiv, Value: id})
	}

	fps = append(fps, types.Fingerprint{
		Scheme: types.SchemeTitleAuthor,
		Value:  titleAuthorKey(doc),
	})
	return fps
}

// NormalizeDOI lowercases a DOI and strips all whitespace. Returns "" for
// an empty input.
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(strings.Join(strings.Fields(doi), ""))
	return strings.TrimPrefix(doi, "https://doi.org/")
}

// NormalizeArxivID strips the optional "arXiv:" prefix and any version
// suffix ("v2" etc.), so revisions of the same preprint share a
// fingerprint. Returns "" when the input does not look like an arXiv ID.
func NormalizeArxivID(id string) string {
	m := arxivPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return ""
	}
	return m[1]
}

// titleAuthorKey hashes the cleaned title head together with the first
// author's surname. This is a fuzzy key: retitled or re-punctuated copies
// of the same item may still miss each other.
func titleAuthorKey(doc types.CandidateDocument) string {
	words := strings.Fields(normalize.ForCompare(doc.Title))
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}

	surname := ""
	if len(doc.Authors) > 0 {
		surname = normalize.Surname(doc.Authors[0])
	}

	h := sha256.Sum256([]byte(strings.Join(words, " ") + "|" + surname))
	return fmt.Sprintf("%x", h[:12])
}
