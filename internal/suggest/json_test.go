package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionsPlainArray(t *testing.T) {
	reply := `[{"package": "matplotlib", "reason": "plotting", "confidence": 0.8}]`

	suggestions, err := ParseSuggestions(reply)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "matplotlib", suggestions[0].Package)
	assert.Equal(t, "plotting", suggestions[0].Reason)
	require.NotNil(t, suggestions[0].Confidence)
	assert.Equal(t, 0.8, *suggestions[0].Confidence)
}

func TestParseSuggestionsMarkdownFence(t *testing.T) {
	reply := "Here are my suggestions:\n```json\n[{\"package\": \"seaborn\", \"reason\": \"charts\"}]\n```\nHope that helps!"

	suggestions, err := ParseSuggestions(reply)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "seaborn", suggestions[0].Package)
	assert.Nil(t, suggestions[0].Confidence)
}

func TestParseSuggestionsBracketsInsideStrings(t *testing.T) {
	reply := `[{"package": "rich", "reason": "renders [bold] markup", "confidence": 0.6}]`

	suggestions, err := ParseSuggestions(reply)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "renders [bold] markup", suggestions[0].Reason)
}

func TestParseSuggestionsEscapedQuotes(t *testing.T) {
	reply := `[{"package": "jq", "reason": "handles \"quoted\" fields", "confidence": 0.7}]`

	suggestions, err := ParseSuggestions(reply)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, `handles "quoted" fields`, suggestions[0].Reason)
}

func TestParseSuggestionsMultipleEntries(t *testing.T) {
	reply := `[
		{"package": "a", "confidence": 0.9},
		{"package": "b"},
		{"package": "c", "reason": "third"}
	]`

	suggestions, err := ParseSuggestions(reply)
	require.NoError(t, err)
	assert.Len(t, suggestions, 3)
}

func TestParseSuggestionsNoArray(t *testing.T) {
	cases := []string{
		"",
		"I cannot help with that.",
		`{"package": "not-an-array"}`,
		"[unclosed",
	}
	for _, reply := range cases {
		_, err := ParseSuggestions(reply)
		assert.Error(t, err, "reply %q", reply)
	}
}

func TestParseSuggestionsMalformedEntries(t *testing.T) {
	// Entries with wrong field types fail unmarshaling at the array level.
	_, err := ParseSuggestions(`[{"package": 42}]`)
	assert.Error(t, err)
}
