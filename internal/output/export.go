package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/echo-systems/echo/internal/recommender"
)

// Export formats for `echo recommend --format`.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// exportResult is the stable machine-readable shape of a recommendation run.
type exportResult struct {
	RunID           string                  `json:"run_id" yaml:"run_id"`
	Recommendations []exportRecommendation  `json:"recommendations" yaml:"recommendations"`
	Diagnostics     recommender.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
}

type exportRecommendation struct {
	Package  string             `json:"package" yaml:"package"`
	Score    float64            `json:"score" yaml:"score"`
	Reason   string             `json:"reason" yaml:"reason"`
	Category string             `json:"category" yaml:"category"`
	Source   string             `json:"source" yaml:"source"`
	Metadata map[string]float64 `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// WriteResult writes a recommendation run to w in the requested format.
func WriteResult(w io.Writer, result *recommender.Result, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
	case FormatTable:
		_, err := io.WriteString(w, RenderRecommendationTable(result.Fused))
		return err
	default:
		return fmt.Errorf("unknown format %q (expected table, json, or yaml)", format)
	}

	out := exportResult{
		RunID:           result.RunID,
		Recommendations: make([]exportRecommendation, 0, len(result.Fused)),
		Diagnostics:     result.Diagnostics,
	}
	for _, rec := range result.Fused {
		out.Recommendations = append(out.Recommendations, exportRecommendation{
			Package:  rec.PackageName,
			Score:    rec.Score,
			Reason:   rec.Reason,
			Category: rec.Category,
			Source:   rec.Source,
			Metadata: rec.Metadata,
		})
	}

	if format == FormatJSON {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = w.Write(data)
	return err
}
