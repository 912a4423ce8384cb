// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes raw candidate-document fields into a
// comparable form: titles and author names are cleaned, date strings are
// parsed, and combined author lists are split. The only rejection is a
// missing title; every other field may be absent.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/digest-engine/pkg/types"
)

// ErrMissingTitle is returned for documents whose title is empty after
// trimming. Such documents cannot be fingerprinted or scored and are
// dropped from the batch.
var ErrMissingTitle = errors.New("document has no title")

// parenPattern matches parenthesized affiliations and degrees in author
// names, e.g. "Jane Doe (MIT)" or "John Smith (PhD)".
var parenPattern = regexp.MustCompile(`\([^)]*\)`)

// dateLayouts are tried in order; the first successful parse wins.
// Covers ISO-8601 date/datetime, year-month, bare year, and RFC-2822
// variants as produced by RSS feeds.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006",
}

// Document returns a normalized copy of doc, or ErrMissingTitle when the
// trimmed title is empty. The transformation is pure: display case is
// preserved, internal whitespace is collapsed, author lists are split into
// individual names, and the publication date is parsed from the raw
// Published string when Date is not already set. Date parse failure is not
// an error; the date simply stays unknown.
func Document(doc types.CandidateDocument) (types.CandidateDocument, error) {
	doc.Title = CollapseSpace(doc.Title)
	if doc.Title == "" {
		return types.CandidateDocument{}, ErrMissingTitle
	}

	doc.Abstract = CollapseSpace(doc.Abstract)
	doc.Source = CollapseSpace(doc.Source)
	doc.Authors = Authors(doc.Authors)

	if doc.Date.IsZero() && doc.Published != "" {
		doc.Date = ParseDate(doc.Published)
	}

	if doc.ExternalIDs != nil {
		ids := make(map[string]string, len(doc.ExternalIDs))
		for scheme, value := range doc.ExternalIDs {
			value = strings.TrimSpace(value)
			if value != "" {
				ids[strings.ToLower(strings.TrimSpace(scheme))] = value
			}
		}
		doc.ExternalIDs = ids
	}

	return doc, nil
}

// CollapseSpace trims s and collapses runs of internal whitespace to a
// single space. Display case is preserved.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ForCompare returns a lowercased, punctuation-stripped form of s for
// fingerprinting and similarity comparisons. Letters, digits, and spaces
// survive; everything else is dropped.
func ForCompare(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Authors normalizes an author list. Entries that combine several names
// (separated by "and", "&", or commas) are split into individual names,
// parenthesized affiliations and degrees are stripped, and whitespace is
// collapsed. Empty entries are dropped.
func Authors(raw []string) []string {
	var out []string
	for _, entry := range raw {
		entry = parenPattern.ReplaceAllString(entry, " ")
		entry = strings.ReplaceAll(entry, " and ", ",")
		entry = strings.ReplaceAll(entry, " & ", ",")
		for _, name := range strings.Split(entry, ",") {
			name = CollapseSpace(name)
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// Surname returns the lowercased last token of name, or "" for an empty name.
func Surname(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// ParseDate parses a publication date string, trying ISO-8601 date and
// datetime forms, "YYYY-MM", "YYYY", and RFC-2822 variants in order. On
// total failure it returns the zero time: an unparseable date is unknown,
// not an error.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
