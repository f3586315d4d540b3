package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// packageEntry is the YAML shape of one package in a catalog or manifest file.
type packageEntry struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description"`
	Source       string            `yaml:"source"`
	InstalledAt  string            `yaml:"installed_at"` // RFC3339, optional
	SizeBytes    int64             `yaml:"size"`
	Tags         []string          `yaml:"tags"`
	Dependencies []string          `yaml:"dependencies"`
	Metadata     map[string]string `yaml:"metadata"`
}

type catalogFile struct {
	Packages []packageEntry `yaml:"packages"`
}

type manifestFile struct {
	Installed []packageEntry `yaml:"installed"`
}

// LoadCatalog reads a YAML catalog file describing the candidate pool of
// known packages. Entries without a name are skipped rather than failing the
// whole load; the skipped count is returned for diagnostics.
func LoadCatalog(path string) ([]*Package, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, 0, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	return convertEntries(cf.Packages, false)
}

// LoadManifest reads a YAML manifest of installed packages. Every returned
// package has a non-nil InstalledAt; entries without an installed_at field
// default to the load time.
func LoadManifest(path string) ([]*Package, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, 0, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	return convertEntries(mf.Installed, true)
}

// convertEntries sanitizes raw YAML entries into Package values. Bad records
// are dropped, not fatal: a missing name or an unparseable timestamp skips
// the entry, and negative sizes are clamped to zero.
func convertEntries(entries []packageEntry, installed bool) ([]*Package, int, error) {
	var packages []*Package
	skipped := 0

	for _, e := range entries {
		if NormalizeName(e.Name) == "" {
			skipped++
			continue
		}

		pkg := &Package{
			Name:         e.Name,
			Version:      e.Version,
			Description:  e.Description,
			Source:       e.Source,
			SizeBytes:    e.SizeBytes,
			Tags:         e.Tags,
			Dependencies: e.Dependencies,
			Metadata:     e.Metadata,
		}
		if pkg.SizeBytes < 0 {
			pkg.SizeBytes = 0
		}

		if e.InstalledAt != "" {
			t, err := time.Parse(time.RFC3339, e.InstalledAt)
			if err != nil {
				skipped++
				continue
			}
			pkg.InstalledAt = &t
		} else if installed {
			now := time.Now()
			pkg.InstalledAt = &now
		}

		packages = append(packages, pkg)
	}

	return packages, skipped, nil
}
