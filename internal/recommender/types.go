// Package recommender implements echo's recommendation-scoring engine: it
// fuses usage statistics, inter-package similarity, and AI-generated
// suggestions into a single ranked, deduplicated recommendation list.
package recommender

import (
	"time"
)

// Recommendation categories. A hybrid recommendation is corroborated by both
// the similarity engine and the AI backend.
const (
	CategorySimilarity = "similarity"
	CategoryAI         = "ai"
	CategoryHybrid     = "hybrid"
)

// SimilarityCandidate is a not-yet-installed package scored by resemblance to
// the installed set. MatchedWith lists the installed packages that produced
// the score, for explanation.
type SimilarityCandidate struct {
	Name        string
	Score       float64 // in [0,1]
	MatchedWith []string
}

// RawSuggestion is one entry as returned by the suggestion backend, before
// normalization. Confidence is a pointer so an omitted value can be told
// apart from an explicit zero.
type RawSuggestion struct {
	Package    string   `json:"package"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AICandidate is a normalized suggestion from the AI backend. Name preserves
// the original casing for display; comparisons use the normalized form.
type AICandidate struct {
	Name       string
	Reason     string
	Confidence float64 // clamped to [0,1]
}

// Recommendation is one row of fused output. Rows are append-only: a fusion
// run creates them once and they are never mutated afterwards.
type Recommendation struct {
	PackageName string
	Score       float64
	Reason      string
	Category    string // similarity, ai, or hybrid
	Source      string
	Timestamp   time.Time
	Metadata    map[string]float64 // raw contributing scores, for audit
}

// Diagnostics reports degraded-mode conditions of a recommendation run.
// Callers surface these to the user instead of treating them as errors.
type Diagnostics struct {
	DroppedAIEntries int  `json:"dropped_ai_entries" yaml:"dropped_ai_entries"`
	BackendTimedOut  bool `json:"backend_timed_out" yaml:"backend_timed_out"`
}

// Result is the full output of one recommendation run.
type Result struct {
	RunID       string
	Similarity  []SimilarityCandidate
	AI          []AICandidate
	Fused       []Recommendation
	Diagnostics Diagnostics
}

// Config holds the tunable scoring constants. The defaults encode the policy
// that AI suggestions are trusted slightly more than similarity because they
// reflect explicit user intent via the workflow description.
type Config struct {
	WeightSimilarity float64 // per-hit similarity weight (default 0.5)
	WeightAI         float64 // per-hit AI confidence weight (default 0.6)

	// Importance blend: log-scaled frequency vs recency decay.
	FrequencyWeight float64
	RecencyWeight   float64
	DecayHalfLife   time.Duration // importance halves per this much idle time

	TopN            int           // max similarity candidates considered
	Limit           int           // max fused recommendations returned
	FailureCooldown time.Duration // recent-failure exclusion window
	BackendTimeout  time.Duration // suggestion backend call budget
}

// DefaultConfig returns the stock scoring configuration.
func DefaultConfig() Config {
	return Config{
		WeightSimilarity: 0.5,
		WeightAI:         0.6,
		FrequencyWeight:  0.6,
		RecencyWeight:    0.4,
		DecayHalfLife:    30 * 24 * time.Hour,
		TopN:             20,
		Limit:            10,
		FailureCooldown:  7 * 24 * time.Hour,
		BackendTimeout:   30 * time.Second,
	}
}
