package recommender

import (
	"math"
	"testing"
	"time"
)

func TestFuseHybridScoring(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now()

	sim := []SimilarityCandidate{{Name: "matplotlib", Score: 0.6, MatchedWith: []string{"pandas"}}}
	ai := []AICandidate{{Name: "matplotlib", Reason: "plotting for your analysis", Confidence: 0.8}}

	recs := Fuse(sim, ai, nil, nil, cfg, now)

	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	r := recs[0]

	want := cfg.WeightSimilarity*0.6 + cfg.WeightAI*0.8
	if math.Abs(r.Score-want) > 1e-9 {
		t.Errorf("hybrid score = %f, want %f", r.Score, want)
	}
	if r.Category != CategoryHybrid {
		t.Errorf("category = %s, want hybrid", r.Category)
	}
	if r.Source != "similarity+ai" {
		t.Errorf("source = %s, want similarity+ai", r.Source)
	}
	if r.Reason != "similar to pandas; plotting for your analysis" {
		t.Errorf("reason = %q", r.Reason)
	}
	if r.Metadata["similarity_score"] != 0.6 || r.Metadata["ai_confidence"] != 0.8 {
		t.Errorf("metadata = %v, want raw contributing scores recorded", r.Metadata)
	}
}

func TestFuseScoreCap(t *testing.T) {
	sim := []SimilarityCandidate{{Name: "pkg", Score: 1.0}}
	ai := []AICandidate{{Name: "pkg", Confidence: 1.0}}

	recs := Fuse(sim, ai, nil, nil, DefaultConfig(), time.Now())

	if len(recs) != 1 || recs[0].Score != 1.0 {
		t.Errorf("score = %v, want capped at 1.0", recs)
	}
}

func TestFuseHybridOutranksSingleSource(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Now()

	sim := []SimilarityCandidate{
		{Name: "both", Score: 0.5},
		{Name: "simonly", Score: 0.5},
	}
	ai := []AICandidate{
		{Name: "both", Confidence: 0.5},
		{Name: "aionly", Confidence: 0.5},
	}

	recs := Fuse(sim, ai, nil, nil, cfg, now)

	scores := make(map[string]float64, len(recs))
	for _, r := range recs {
		scores[r.PackageName] = r.Score
	}

	if scores["both"] < scores["simonly"] || scores["both"] < scores["aionly"] {
		t.Errorf("corroborated package scored %f, below single sources %f/%f",
			scores["both"], scores["simonly"], scores["aionly"])
	}
	if recs[0].PackageName != "both" {
		t.Errorf("top recommendation = %s, want the corroborated package", recs[0].PackageName)
	}
}

func TestFuseExcludesInstalledAndFailed(t *testing.T) {
	sim := []SimilarityCandidate{
		{Name: "Installed", Score: 0.9},
		{Name: "broken", Score: 0.9},
		{Name: "fresh", Score: 0.4},
	}
	ai := []AICandidate{
		{Name: "INSTALLED", Confidence: 0.95},
		{Name: "Broken", Confidence: 0.95},
	}
	installed := map[string]bool{"installed": true}
	failures := map[string]bool{"broken": true}

	recs := Fuse(sim, ai, installed, failures, DefaultConfig(), time.Now())

	if len(recs) != 1 || recs[0].PackageName != "fresh" {
		t.Errorf("recs = %+v, want only 'fresh'; installed and recently-failed must be excluded", recs)
	}
}

func TestFuseLimitTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limit = 2

	sim := []SimilarityCandidate{
		{Name: "a", Score: 0.9},
		{Name: "b", Score: 0.8},
		{Name: "c", Score: 0.7},
		{Name: "d", Score: 0.6},
	}

	recs := Fuse(sim, nil, nil, nil, cfg, time.Now())

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want limit of 2", len(recs))
	}
	if recs[0].PackageName != "a" || recs[1].PackageName != "b" {
		t.Errorf("kept %s, %s; want the two highest scorers", recs[0].PackageName, recs[1].PackageName)
	}
}

func TestFuseDeterministicTieBreaks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WeightSimilarity = 0.6 // equalize with the AI weight for a true tie

	sim := []SimilarityCandidate{{Name: "zeta", Score: 0.5}}
	ai := []AICandidate{{Name: "alpha", Confidence: 0.5}}

	recs := Fuse(sim, ai, nil, nil, cfg, time.Now())

	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	// Equal scores: ai outranks similarity.
	if recs[0].PackageName != "alpha" {
		t.Errorf("tie-break order = %s, %s; want ai before similarity", recs[0].PackageName, recs[1].PackageName)
	}
}

func TestFuseEmptyInputs(t *testing.T) {
	recs := Fuse(nil, nil, nil, nil, DefaultConfig(), time.Now())
	if len(recs) != 0 {
		t.Errorf("got %d recommendations from empty inputs, want 0", len(recs))
	}
}

func TestFuseIdempotent(t *testing.T) {
	now := time.Now()
	sim := []SimilarityCandidate{
		{Name: "a", Score: 0.7, MatchedWith: []string{"x"}},
		{Name: "b", Score: 0.3},
	}
	ai := []AICandidate{{Name: "a", Confidence: 0.9, Reason: "fits"}}

	first := Fuse(sim, ai, nil, nil, DefaultConfig(), now)
	second := Fuse(sim, ai, nil, nil, DefaultConfig(), now)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].PackageName != second[i].PackageName || first[i].Score != second[i].Score {
			t.Errorf("row %d differs between identical runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFuseSimilarityOnlyCategory(t *testing.T) {
	recs := Fuse([]SimilarityCandidate{{Name: "pkg", Score: 0.5}}, nil, nil, nil, DefaultConfig(), time.Now())

	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Category != CategorySimilarity || recs[0].Source != "similarity" {
		t.Errorf("category/source = %s/%s, want similarity/similarity", recs[0].Category, recs[0].Source)
	}
}
