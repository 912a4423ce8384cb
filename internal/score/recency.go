// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"math"
	"time"
)

// Recency scores a publication date by exponential decay: a document at
// the half-life age scores 0.5, a fresh one scores 1.0. Future-dated
// documents clamp to 1.0. A zero date means the publication time is
// unknown and scores unknownDefault (0 under the stock stale policy).
func Recency(date time.Time, now time.Time, halfLifeDays, unknownDefault float64) float64 {
	if date.IsZero() {
		return unknownDefault
	}
	ageDays := now.Sub(date).Hours() / 24
	if ageDays <= 0 {
		return 1
	}
	lambda := math.Ln2 / halfLifeDays
	return math.Exp(-lambda * ageDays)
}
