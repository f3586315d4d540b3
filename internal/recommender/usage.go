package recommender

import (
	"math"
	"sort"
	"time"

	"github.com/echo-systems/echo/internal/catalog"
)

// ComputeImportance derives a normalized [0,1] importance score per package
// from its usage pattern. The score blends log-scaled frequency (one extra
// use matters less as the count grows) with recency decay (the recency part
// halves every cfg.DecayHalfLife since last use).
//
// Packages with frequency <= 0 score 0, even when a last-used timestamp is
// present: inconsistent evidence is not trusted. A pattern with uses but no
// last-used timestamp earns only the frequency part.
func ComputeImportance(patterns []*catalog.UsagePattern, now time.Time, cfg Config) map[string]float64 {
	importance := make(map[string]float64, len(patterns))

	for _, p := range patterns {
		if p == nil || catalog.NormalizeName(p.PackageName) == "" {
			continue
		}
		importance[catalog.NormalizeName(p.PackageName)] = scorePattern(p, now, cfg)
	}

	return importance
}

// scorePattern computes the importance score for a single usage pattern.
func scorePattern(p *catalog.UsagePattern, now time.Time, cfg Config) float64 {
	if p.Frequency <= 0 {
		return 0
	}

	// Log-scaled frequency, asymptotically approaching 1.
	lf := math.Log1p(float64(p.Frequency))
	freqScore := lf / (lf + 1)

	score := cfg.FrequencyWeight * freqScore

	if p.LastUsed != nil {
		idle := now.Sub(*p.LastUsed)
		if idle < 0 {
			idle = 0 // clock skew: treat future timestamps as "just used"
		}
		halfLives := idle.Hours() / cfg.DecayHalfLife.Hours()
		score += cfg.RecencyWeight * math.Exp2(-halfLives)
	}

	return clamp01(score)
}

// UsageRank pairs a package with its importance for ranked display.
type UsageRank struct {
	PackageName string
	Importance  float64
	Frequency   int
}

// RankUsage returns patterns ordered by importance descending. Equal scores
// are broken by raw frequency descending, then by name for determinism.
func RankUsage(patterns []*catalog.UsagePattern, now time.Time, cfg Config) []UsageRank {
	ranks := make([]UsageRank, 0, len(patterns))
	for _, p := range patterns {
		if p == nil || catalog.NormalizeName(p.PackageName) == "" {
			continue
		}
		ranks = append(ranks, UsageRank{
			PackageName: p.PackageName,
			Importance:  scorePattern(p, now, cfg),
			Frequency:   p.Frequency,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Importance != ranks[j].Importance {
			return ranks[i].Importance > ranks[j].Importance
		}
		if ranks[i].Frequency != ranks[j].Frequency {
			return ranks[i].Frequency > ranks[j].Frequency
		}
		return catalog.NormalizeName(ranks[i].PackageName) < catalog.NormalizeName(ranks[j].PackageName)
	})

	return ranks
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
