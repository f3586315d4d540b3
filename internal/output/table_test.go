package output

import (
	"strings"
	"testing"
	"time"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/store"
)

func TestRenderRecommendationTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	recs := []recommender.Recommendation{
		{PackageName: "matplotlib", Score: 0.82, Category: "hybrid", Reason: "similar to pandas; plotting"},
		{PackageName: "seaborn", Score: 0.42, Category: "ai", Reason: "statistical charts"},
	}

	out := RenderRecommendationTable(recs)

	if !strings.Contains(out, "matplotlib") || !strings.Contains(out, "seaborn") {
		t.Errorf("output missing package names:\n%s", out)
	}
	if !strings.Contains(out, "0.82") {
		t.Errorf("output missing score:\n%s", out)
	}
	if !strings.Contains(out, "hybrid") {
		t.Errorf("output missing category:\n%s", out)
	}
	if strings.Contains(out, "\033[") {
		t.Error("ANSI codes emitted with NO_COLOR set")
	}
	// Rank order preserved.
	if strings.Index(out, "matplotlib") > strings.Index(out, "seaborn") {
		t.Error("rows out of rank order")
	}
}

func TestRenderRecommendationTableEmpty(t *testing.T) {
	out := RenderRecommendationTable(nil)
	if !strings.Contains(out, "No recommendations") {
		t.Errorf("empty table output = %q", out)
	}
}

func TestRenderDiagnostics(t *testing.T) {
	if out := RenderDiagnostics(recommender.Diagnostics{}); out != "" {
		t.Errorf("clean run diagnostics = %q, want empty", out)
	}

	out := RenderDiagnostics(recommender.Diagnostics{BackendTimedOut: true, DroppedAIEntries: 3})
	if !strings.Contains(out, "similarity signals only") {
		t.Errorf("missing degraded-mode note: %q", out)
	}
	if !strings.Contains(out, "3 malformed") {
		t.Errorf("missing dropped count: %q", out)
	}
}

func TestRenderUsageTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	lastUsed := time.Now().Add(-48 * time.Hour)
	ranks := []recommender.UsageRank{
		{PackageName: "pandas", Importance: 0.91, Frequency: 40},
	}
	patterns := map[string]*catalog.UsagePattern{
		"pandas": {PackageName: "pandas", Frequency: 40, LastUsed: &lastUsed, Contexts: []string{"analysis"}},
	}

	out := RenderUsageTable(ranks, patterns)

	if !strings.Contains(out, "pandas") || !strings.Contains(out, "0.91") {
		t.Errorf("output missing rank data:\n%s", out)
	}
	if !strings.Contains(out, "2 days ago") {
		t.Errorf("output missing relative time:\n%s", out)
	}
	if !strings.Contains(out, "analysis") {
		t.Errorf("output missing contexts:\n%s", out)
	}
}

func TestRenderUsageTableEmpty(t *testing.T) {
	if out := RenderUsageTable(nil, nil); !strings.Contains(out, "No usage data") {
		t.Errorf("empty usage output = %q", out)
	}
}

func TestRenderRunTable(t *testing.T) {
	runs := []store.RunSummary{
		{RunID: "run-abc", CreatedAt: time.Now().Add(-2 * time.Hour), Count: 7},
	}

	out := RenderRunTable(runs)

	if !strings.Contains(out, "run-abc") || !strings.Contains(out, "7") {
		t.Errorf("output missing run data:\n%s", out)
	}
}

func TestRenderHistoryTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	records := []*catalog.InstallationRecord{
		{PackageName: "tensorflow", Operation: "install", Timestamp: time.Now(), Success: false, Details: "no wheel"},
		{PackageName: "numpy", Operation: "install", Timestamp: time.Now(), Success: true},
	}

	out := RenderHistoryTable(records)

	if !strings.Contains(out, "failed") {
		t.Errorf("output missing failure marker:\n%s", out)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("output missing success marker:\n%s", out)
	}
	if !strings.Contains(out, "no wheel") {
		t.Errorf("output missing details:\n%s", out)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Minute, "1 minute ago"},
		{3 * time.Hour, "3 hours ago"},
		{2 * 24 * time.Hour, "2 days ago"},
		{10 * 24 * time.Hour, "1 week ago"},
		{60 * 24 * time.Hour, "2 months ago"},
		{800 * 24 * time.Hour, "2 years ago"},
	}
	for _, c := range cases {
		got := formatRelativeTime(time.Now().Add(-c.age))
		if got != c.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", c.age, got, c.want)
		}
	}

	if got := formatRelativeTime(time.Time{}); got != "never" {
		t.Errorf("zero time = %q, want never", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 20); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a-very-long-package-name", 10); got != "a-very-..." {
		t.Errorf("truncate = %q, want %q", got, "a-very-...")
	}
	if len(truncate("abcdef", 3)) != 3 {
		t.Error("tiny maxLen not honored")
	}
}
