package recommender

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/echo-systems/echo/internal/catalog"
)

// categoryRank orders categories for tie-breaking: corroborated evidence
// outranks a single source, and explicit intent (AI) outranks implicit
// resemblance.
var categoryRank = map[string]int{
	CategoryHybrid:     0,
	CategoryAI:         1,
	CategorySimilarity: 2,
}

// fusedEntry accumulates per-package signal contributions during fusion.
type fusedEntry struct {
	display     string
	simScore    float64
	aiConf      float64
	hasSim      bool
	hasAI       bool
	matchedWith []string
	aiReason    string
}

// Fuse merges similarity and AI candidates into the final ranked
// recommendation list:
//
//   - candidates already installed or with a recent failed install are
//     excluded outright, regardless of score;
//   - each similarity hit contributes cfg.WeightSimilarity * score, each AI
//     hit cfg.WeightAI * confidence; a package present in both sources gets
//     the additive combination and category "hybrid";
//   - final scores are capped at 1.0 after the addition, so corroborating
//     evidence never ranks lower than less evidence;
//   - ordering is score descending, then hybrid > ai > similarity, then
//     alphabetical; the list is truncated to cfg.Limit.
//
// Empty inputs produce an empty list, never an error.
func Fuse(similarity []SimilarityCandidate, ai []AICandidate, installed, recentFailures map[string]bool, cfg Config, now time.Time) []Recommendation {
	entries := make(map[string]*fusedEntry)
	var order []string

	excluded := func(key string) bool {
		return key == "" || installed[key] || recentFailures[key]
	}

	for _, c := range similarity {
		key := catalog.NormalizeName(c.Name)
		if excluded(key) {
			continue
		}
		e, ok := entries[key]
		if !ok {
			e = &fusedEntry{display: c.Name}
			entries[key] = e
			order = append(order, key)
		}
		// Keep the strongest similarity hit if the input carries duplicates.
		if !e.hasSim || c.Score > e.simScore {
			e.simScore = c.Score
			e.matchedWith = c.MatchedWith
		}
		e.hasSim = true
	}

	for _, c := range ai {
		key := catalog.NormalizeName(c.Name)
		if excluded(key) {
			continue
		}
		e, ok := entries[key]
		if !ok {
			e = &fusedEntry{display: c.Name}
			entries[key] = e
			order = append(order, key)
		}
		if !e.hasAI || c.Confidence > e.aiConf {
			e.aiConf = c.Confidence
			e.aiReason = c.Reason
		}
		e.hasAI = true
	}

	recs := make([]Recommendation, 0, len(order))
	for _, key := range order {
		e := entries[key]

		score := 0.0
		metadata := map[string]float64{
			"similarity_weight": cfg.WeightSimilarity,
			"ai_weight":         cfg.WeightAI,
		}
		if e.hasSim {
			score += cfg.WeightSimilarity * e.simScore
			metadata["similarity_score"] = e.simScore
		}
		if e.hasAI {
			score += cfg.WeightAI * e.aiConf
			metadata["ai_confidence"] = e.aiConf
		}
		if score > 1.0 {
			score = 1.0
		}

		recs = append(recs, Recommendation{
			PackageName: e.display,
			Score:       score,
			Reason:      buildReason(e),
			Category:    category(e),
			Source:      source(e),
			Timestamp:   now,
			Metadata:    metadata,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		if categoryRank[recs[i].Category] != categoryRank[recs[j].Category] {
			return categoryRank[recs[i].Category] < categoryRank[recs[j].Category]
		}
		return catalog.NormalizeName(recs[i].PackageName) < catalog.NormalizeName(recs[j].PackageName)
	})

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultConfig().Limit
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

func category(e *fusedEntry) string {
	switch {
	case e.hasSim && e.hasAI:
		return CategoryHybrid
	case e.hasAI:
		return CategoryAI
	default:
		return CategorySimilarity
	}
}

func source(e *fusedEntry) string {
	switch {
	case e.hasSim && e.hasAI:
		return "similarity+ai"
	case e.hasAI:
		return "ai"
	default:
		return "similarity"
	}
}

// buildReason renders the human-readable explanation, concatenating both
// sources' contributions when they agree.
func buildReason(e *fusedEntry) string {
	var parts []string

	if e.hasSim {
		if len(e.matchedWith) > 0 {
			parts = append(parts, fmt.Sprintf("similar to %s", strings.Join(e.matchedWith, ", ")))
		} else {
			parts = append(parts, "similar to installed packages")
		}
	}
	if e.hasAI {
		if e.aiReason != "" {
			parts = append(parts, e.aiReason)
		} else {
			parts = append(parts, "suggested for your workflow")
		}
	}

	return strings.Join(parts, "; ")
}
