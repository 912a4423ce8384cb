// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"sort"
	"strings"
)

// Credibility looks up the document source in the reputation table.
// Lookup is case-insensitive: an exact match wins, then the highest-rated
// table entry contained in the source name (so "Nature Communications"
// matches a "nature" entry). Unknown sources score unknownDefault
// (0.5 neutral under the stock policy).
func Credibility(source string, reputation map[string]float64, unknownDefault float64) float64 {
	if len(reputation) == 0 {
		return unknownDefault
	}
	lower := strings.ToLower(strings.TrimSpace(source))
	if lower == "" {
		return unknownDefault
	}
	if v, ok := reputation[lower]; ok {
		return v
	}

	// Substring pass in sorted key order for determinism.
	keys := make([]string, 0, len(reputation))
	for k := range reputation {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, found := 0.0, false
	for _, k := range keys {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			if !found || reputation[k] > best {
				best, found = reputation[k], true
			}
		}
	}
	if found {
		return best
	}
	return unknownDefault
}
