package recommender

import (
	"strings"

	"github.com/echo-systems/echo/internal/catalog"
)

// defaultConfidence is assumed when the backend omits a confidence value.
const defaultConfidence = 0.5

// NormalizeSuggestions turns raw backend suggestions into deduplicated
// AICandidates. The backend may return malformed, duplicated, or adversarial
// entries; normalization never fails. Entries with an empty package name are
// dropped and counted. Confidence is clamped into [0,1], defaulting to 0.5
// when absent. When the same package appears more than once (names compare
// case-insensitively), the entry with the higher confidence wins and the
// reasons are concatenated.
//
// Candidates are returned in first-appearance order of their surviving key.
// The second return value is the number of dropped entries, reported to the
// caller as a diagnostic count.
func NormalizeSuggestions(raw []RawSuggestion) ([]AICandidate, int) {
	dropped := 0
	byName := make(map[string]*AICandidate, len(raw))
	var order []string

	for _, s := range raw {
		display := strings.TrimSpace(s.Package)
		key := catalog.NormalizeName(display)
		if key == "" {
			dropped++
			continue
		}

		conf := defaultConfidence
		if s.Confidence != nil {
			conf = clamp01(*s.Confidence)
		}
		reason := strings.TrimSpace(s.Reason)

		existing, ok := byName[key]
		if !ok {
			byName[key] = &AICandidate{Name: display, Reason: reason, Confidence: conf}
			order = append(order, key)
			continue
		}

		// Duplicate: keep the higher-confidence entry's name and lead reason,
		// but never lose an explanation.
		if conf > existing.Confidence {
			existing.Name = display
			existing.Confidence = conf
			existing.Reason = concatReasons(reason, existing.Reason)
		} else {
			existing.Reason = concatReasons(existing.Reason, reason)
		}
	}

	candidates := make([]AICandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, *byName[key])
	}
	return candidates, dropped
}

// concatReasons joins two reason strings with "; ", skipping empties and
// exact repeats.
func concatReasons(first, second string) string {
	if second == "" || second == first {
		return first
	}
	if first == "" {
		return second
	}
	return first + "; " + second
}
