// Package output renders echo's terminal output: recommendation, usage, and
// history tables, plus machine-readable export. Tables use ASCII layout with
// ANSI colors when stdout is a terminal.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/recommender"
	"github.com/echo-systems/echo/internal/store"
)

// ANSI color codes for category display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRecommendationTable renders fused recommendations in rank order.
// Expects recs to be pre-sorted by the fuser.
func RenderRecommendationTable(recs []recommender.Recommendation) string {
	if len(recs) == 0 {
		return "No recommendations.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-4s %-20s %-7s %-11s %s\n",
		"#", "Package", "Score", "Category", "Reason"))
	sb.WriteString(strings.Repeat("─", 92))
	sb.WriteString("\n")

	for i, rec := range recs {
		category := colorize(categoryColor(rec.Category), fmt.Sprintf("%-11s", rec.Category))
		sb.WriteString(fmt.Sprintf("%-4d %-20s %-7.2f %s %s\n",
			i+1,
			truncate(rec.PackageName, 20),
			rec.Score,
			category,
			truncate(rec.Reason, 46)))
	}

	return sb.String()
}

// RenderDiagnostics renders the degraded-mode notes of a run, or "" when the
// run was clean.
func RenderDiagnostics(d recommender.Diagnostics) string {
	var notes []string
	if d.BackendTimedOut {
		notes = append(notes, "suggestion backend unavailable; similarity signals only")
	}
	if d.DroppedAIEntries > 0 {
		notes = append(notes, fmt.Sprintf("%d malformed AI suggestion(s) dropped", d.DroppedAIEntries))
	}
	if len(notes) == 0 {
		return ""
	}
	return "⚠ " + strings.Join(notes, "; ") + "\n"
}

// RenderUsageTable renders importance-ranked usage statistics.
func RenderUsageTable(ranks []recommender.UsageRank, patterns map[string]*catalog.UsagePattern) string {
	if len(ranks) == 0 {
		return "No usage data recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-11s %-9s %-14s %s\n",
		"Package", "Importance", "Uses", "Last Used", "Contexts"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, r := range ranks {
		lastUsed := "never"
		contexts := ""
		if p := patterns[catalog.NormalizeName(r.PackageName)]; p != nil {
			if p.LastUsed != nil {
				lastUsed = formatRelativeTime(*p.LastUsed)
			}
			contexts = strings.Join(p.Contexts, ", ")
		}

		sb.WriteString(fmt.Sprintf("%-20s %-11.2f %-9d %-14s %s\n",
			truncate(r.PackageName, 20),
			r.Importance,
			r.Frequency,
			lastUsed,
			truncate(contexts, 30)))
	}

	return sb.String()
}

// RenderRunTable renders past recommendation runs, newest first.
func RenderRunTable(runs []store.RunSummary) string {
	if len(runs) == 0 {
		return "No recommendation runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-38s %-16s %s\n", "Run", "Created", "Rows"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-38s %-16s %d\n",
			run.RunID,
			formatRelativeTime(run.CreatedAt),
			run.Count))
	}

	return sb.String()
}

// RenderHistoryTable renders installation history records.
func RenderHistoryTable(records []*catalog.InstallationRecord) string {
	if len(records) == 0 {
		return "No installation history.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-11s %-16s %-8s %s\n",
		"Package", "Operation", "When", "Result", "Details"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, rec := range records {
		result := colorize(colorGreen, "ok")
		if !rec.Success {
			result = colorize(colorYellow, "failed")
		}
		sb.WriteString(fmt.Sprintf("%-20s %-11s %-16s %-8s %s\n",
			truncate(rec.PackageName, 20),
			rec.Operation,
			formatRelativeTime(rec.Timestamp),
			result,
			truncate(rec.Details, 30)))
	}

	return sb.String()
}

// categoryColor returns the ANSI color for a recommendation category.
func categoryColor(category string) string {
	switch category {
	case recommender.CategoryHybrid:
		return colorGreen
	case recommender.CategoryAI:
		return colorCyan
	case recommender.CategorySimilarity:
		return colorYellow
	default:
		return colorGray
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
