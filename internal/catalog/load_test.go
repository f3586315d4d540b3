package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeTempYAML(t, `
packages:
  - name: pandas
    version: "2.2.0"
    description: data analysis library
    source: pip
    size: 42000000
    tags: [data, python]
    dependencies: [numpy]
    metadata:
      license: BSD-3-Clause
  - name: flask
    tags: [web]
`)

	packages, skipped, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(packages))
	}

	pandas := packages[0]
	if pandas.Name != "pandas" || pandas.Version != "2.2.0" {
		t.Errorf("got %s/%s", pandas.Name, pandas.Version)
	}
	if pandas.Installed() {
		t.Error("catalog entry without installed_at must not be installed")
	}
	if len(pandas.Dependencies) != 1 || pandas.Dependencies[0] != "numpy" {
		t.Errorf("dependencies = %v", pandas.Dependencies)
	}
	if pandas.Metadata["license"] != "BSD-3-Clause" {
		t.Errorf("metadata = %v", pandas.Metadata)
	}
}

func TestLoadCatalogSkipsBadEntries(t *testing.T) {
	path := writeTempYAML(t, `
packages:
  - name: ""
    version: "1.0"
  - name: badtime
    installed_at: "not-a-timestamp"
  - name: good
    size: -5
`)

	packages, skipped, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(packages) != 1 || packages[0].Name != "good" {
		t.Fatalf("packages = %v, want only 'good'", packages)
	}
	if packages[0].SizeBytes != 0 {
		t.Errorf("size = %d, want negative size clamped to 0", packages[0].SizeBytes)
	}
}

func TestLoadManifest(t *testing.T) {
	path := writeTempYAML(t, `
installed:
  - name: numpy
    installed_at: "2026-01-15T10:30:00Z"
  - name: requests
`)

	packages, skipped, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(packages))
	}

	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if packages[0].InstalledAt == nil || !packages[0].InstalledAt.Equal(want) {
		t.Errorf("installed_at = %v, want %v", packages[0].InstalledAt, want)
	}

	// Manifest entries default to "installed now" when no timestamp is given.
	if packages[1].InstalledAt == nil {
		t.Error("manifest entry without installed_at must still be installed")
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"NumPy", "numpy"},
		{"  pandas  ", "pandas"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
