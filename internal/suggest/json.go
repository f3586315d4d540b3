package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/echo-systems/echo/internal/recommender"
)

// ParseSuggestions extracts the first JSON array from a model reply and
// unmarshals it into raw suggestions. Replies wrapped in markdown fences or
// surrounded by prose are handled; a reply with no valid JSON array is an
// error (the run then degrades to similarity-only). Per-entry sanitization
// is not done here; that is the normalizer's job.
func ParseSuggestions(reply string) ([]recommender.RawSuggestion, error) {
	jsonStr, err := extractJSONArray(reply)
	if err != nil {
		return nil, err
	}

	var suggestions []recommender.RawSuggestion
	if err := json.Unmarshal([]byte(jsonStr), &suggestions); err != nil {
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}
	return suggestions, nil
}

// extractJSONArray finds the first balanced JSON array in s, tolerating
// leading/trailing prose and code fences.
func extractJSONArray(s string) (string, error) {
	if jsonStr, ok := extractBalanced(s, '[', ']'); ok {
		if json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}

	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON array found in response")
}

// extractBalanced finds the first balanced structure delimited by openChar
// and closeChar, counting bracket depth and skipping string literals.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
