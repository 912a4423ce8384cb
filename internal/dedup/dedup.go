// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup groups candidate documents that share fingerprints and
// selects a canonical representative per group. Grouping is transitive:
// if A matches B by DOI and B matches C by title hash, all three land in
// one group even though A and C share no key directly.
package dedup

import (
	"sort"
	"strings"

	"github.com/pdiddy/digest-engine/internal/fingerprint"
	"github.com/pdiddy/digest-engine/pkg/types"
)

// Group partitions docs into duplicate groups. Every input document lands
// in exactly one group, singletons included; there is no failure mode.
//
// Sources disagree on which identifiers they expose, so any shared
// (scheme, value) pair is merge evidence. When cfg.RequireStrongAgreement
// is set, a fuzzy title_author link is not allowed to merge two documents
// that each carry a strong identifier without sharing one.
func Group(docs []types.CandidateDocument, cfg types.DedupConfig) []types.DuplicateGroup {
	fps := make([][]types.Fingerprint, len(docs))
	for i, doc := range docs {
		fps[i] = fingerprint.Generate(doc)
	}

	uf := newUnionFind(len(docs))

	byKey := make(map[string][]int)
	for i, docFps := range fps {
		for _, fp := range docFps {
			byKey[fp.Key()] = append(byKey[fp.Key()], i)
		}
	}

	// Keys are visited in a fixed order per document so grouping does not
	// depend on map iteration.
	for i := range docs {
		for _, fp := range fps[i] {
			for _, j := range byKey[fp.Key()] {
				if j == i {
					continue
				}
				if cfg.RequireStrongAgreement && !fp.Scheme.Strong() && strongConflict(fps[i], fps[j]) {
					continue
				}
				uf.union(i, j)
			}
		}
	}

	// Collect groups in first-appearance order.
	byRoot := make(map[int][]int)
	var roots []int
	for i := range docs {
		root := uf.find(i)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], i)
	}

	groups := make([]types.DuplicateGroup, 0, len(roots))
	for _, root := range roots {
		members := make([]types.CandidateDocument, 0, len(byRoot[root]))
		for _, i := range byRoot[root] {
			members = append(members, docs[i])
		}
		sort.SliceStable(members, func(a, b int) bool {
			return preferred(members[a], members[b])
		})
		groups = append(groups, types.DuplicateGroup{
			Canonical: members[0],
			Members:   members,
		})
	}
	return groups
}

// Canonicals returns the canonical document of each group, in group order.
func Canonicals(groups []types.DuplicateGroup) []types.CandidateDocument {
	out := make([]types.CandidateDocument, len(groups))
	for i, g := range groups {
		out[i] = g.Canonical
	}
	return out
}

// strongConflict reports whether both fingerprint sets carry a strong
// identifier (DOI or arXiv) yet share none. Under the conservative merge
// policy a weak title_author chain may not override that disagreement.
func strongConflict(a, b []types.Fingerprint) bool {
	strongA := strongKeys(a)
	strongB := strongKeys(b)
	if len(strongA) == 0 || len(strongB) == 0 {
		return false
	}
	for k := range strongA {
		if strongB[k] {
			return false
		}
	}
	return true
}

func strongKeys(fps []types.Fingerprint) map[string]bool {
	var keys map[string]bool
	for _, fp := range fps {
		if fp.Scheme.Strong() {
			if keys == nil {
				keys = make(map[string]bool)
			}
			keys[fp.Key()] = true
		}
	}
	return keys
}

// preferred is the canonical-selection order: completeness descending,
// then earliest known publication date (the earliest record is presumed
// the original; unknown dates sort last), then source name ascending, with
// title and raw ID as final tie-breaks so the order is total.
func preferred(a, b types.CandidateDocument) bool {
	if ca, cb := a.Completeness(), b.Completeness(); ca != cb {
		return ca > cb
	}
	switch {
	case a.Date.IsZero() != b.Date.IsZero():
		return !a.Date.IsZero()
	case !a.Date.Equal(b.Date):
		return a.Date.Before(b.Date)
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	if a.Title != b.Title {
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	}
	return a.RawID < b.RawID
}

// unionFind is a disjoint-set forest with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	// Attach the larger root index under the smaller so results do not
	// depend on union order.
	if ri < rj {
		u.parent[rj] = ri
	} else {
		u.parent[ri] = rj
	}
}
