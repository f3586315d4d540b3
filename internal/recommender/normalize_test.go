package recommender

import (
	"testing"

	"github.com/echo-systems/echo/internal/catalog"
)

func confPtr(v float64) *float64 {
	return &v
}

func TestNormalizeSuggestionsCaseInsensitiveDedup(t *testing.T) {
	raw := []RawSuggestion{
		{Package: "Jupyter", Reason: "interactive notebooks", Confidence: confPtr(0.7)},
		{Package: "jupyter", Reason: "exploratory analysis", Confidence: confPtr(0.9)},
	}

	candidates, dropped := NormalizeSuggestions(raw)

	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want case variants merged into 1", len(candidates))
	}

	c := candidates[0]
	if c.Confidence != 0.9 {
		t.Errorf("confidence = %f, want the higher value 0.9", c.Confidence)
	}
	if c.Name != "jupyter" {
		t.Errorf("name = %q, want the higher-confidence entry's casing", c.Name)
	}
	if c.Reason != "exploratory analysis; interactive notebooks" {
		t.Errorf("reason = %q, want both reasons concatenated", c.Reason)
	}
}

func TestNormalizeSuggestionsDropsEmptyNames(t *testing.T) {
	raw := []RawSuggestion{
		{Package: "", Reason: "no name"},
		{Package: "   ", Reason: "whitespace name"},
		{Package: "valid", Reason: "ok"},
	}

	candidates, dropped := NormalizeSuggestions(raw)

	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	if len(candidates) != 1 || candidates[0].Name != "valid" {
		t.Errorf("candidates = %+v, want only 'valid'", candidates)
	}
}

func TestNormalizeSuggestionsConfidenceClamp(t *testing.T) {
	raw := []RawSuggestion{
		{Package: "over", Confidence: confPtr(1.5)},
		{Package: "under", Confidence: confPtr(-0.2)},
	}

	candidates, _ := NormalizeSuggestions(raw)

	for _, c := range candidates {
		switch c.Name {
		case "over":
			if c.Confidence != 1.0 {
				t.Errorf("over-range confidence = %f, want clamped to 1.0", c.Confidence)
			}
		case "under":
			if c.Confidence != 0.0 {
				t.Errorf("under-range confidence = %f, want clamped to 0.0", c.Confidence)
			}
		}
	}
}

func TestNormalizeSuggestionsDefaultConfidence(t *testing.T) {
	candidates, _ := NormalizeSuggestions([]RawSuggestion{{Package: "pkg"}})

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Confidence != defaultConfidence {
		t.Errorf("confidence = %f, want default %f", candidates[0].Confidence, defaultConfidence)
	}
}

func TestNormalizeSuggestionsPreservesOrder(t *testing.T) {
	raw := []RawSuggestion{
		{Package: "zeta"},
		{Package: "alpha"},
		{Package: "Zeta", Confidence: confPtr(0.9)}, // duplicate does not reorder
		{Package: "mid"},
	}

	candidates, _ := NormalizeSuggestions(raw)

	want := []string{"zeta", "alpha", "mid"}
	if len(candidates) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(candidates), len(want))
	}
	for i, name := range want {
		if got := catalog.NormalizeName(candidates[i].Name); got != name {
			t.Errorf("candidate %d = %q, want %q", i, got, name)
		}
	}
}

func TestNormalizeSuggestionsEmptyInput(t *testing.T) {
	candidates, dropped := NormalizeSuggestions(nil)
	if len(candidates) != 0 || dropped != 0 {
		t.Errorf("got %d candidates and %d dropped from nil input, want 0 and 0", len(candidates), dropped)
	}
}

func TestNormalizeSuggestionsLowerConfidenceDuplicateKeepsReason(t *testing.T) {
	raw := []RawSuggestion{
		{Package: "pkg", Reason: "first", Confidence: confPtr(0.8)},
		{Package: "PKG", Reason: "second", Confidence: confPtr(0.3)},
	}

	candidates, _ := NormalizeSuggestions(raw)

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Confidence != 0.8 || c.Name != "pkg" {
		t.Errorf("winner = %q/%f, want pkg/0.8", c.Name, c.Confidence)
	}
	if c.Reason != "first; second" {
		t.Errorf("reason = %q, want %q", c.Reason, "first; second")
	}
}
