package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/echo-systems/echo/internal/recommender"
)

func exportFixture() *recommender.Result {
	return &recommender.Result{
		RunID: "run-test",
		Fused: []recommender.Recommendation{
			{
				PackageName: "matplotlib",
				Score:       0.82,
				Reason:      "similar to pandas; plotting",
				Category:    "hybrid",
				Source:      "similarity+ai",
				Timestamp:   time.Now(),
				Metadata:    map[string]float64{"ai_confidence": 0.8},
			},
		},
		Diagnostics: recommender.Diagnostics{DroppedAIEntries: 1},
	}
}

func TestWriteResultJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, exportFixture(), FormatJSON); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	var decoded struct {
		RunID           string `json:"run_id"`
		Recommendations []struct {
			Package  string  `json:"package"`
			Score    float64 `json:"score"`
			Category string  `json:"category"`
		} `json:"recommendations"`
		Diagnostics struct {
			DroppedAIEntries int `json:"dropped_ai_entries"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if decoded.RunID != "run-test" {
		t.Errorf("run_id = %q", decoded.RunID)
	}
	if len(decoded.Recommendations) != 1 || decoded.Recommendations[0].Package != "matplotlib" {
		t.Errorf("recommendations = %+v", decoded.Recommendations)
	}
	if decoded.Diagnostics.DroppedAIEntries != 1 {
		t.Errorf("diagnostics not exported: %+v", decoded.Diagnostics)
	}
}

func TestWriteResultYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, exportFixture(), FormatYAML); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, buf.String())
	}
	if decoded["run_id"] != "run-test" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
}

func TestWriteResultTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	if err := WriteResult(&buf, exportFixture(), FormatTable); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if !strings.Contains(buf.String(), "matplotlib") {
		t.Errorf("table output missing data:\n%s", buf.String())
	}
}

func TestWriteResultUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResult(&buf, exportFixture(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
