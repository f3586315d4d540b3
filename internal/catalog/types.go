// Package catalog defines the package-domain types shared across echo and
// loads catalog/manifest files into them.
package catalog

import (
	"strings"
	"time"
)

// Package represents a software package known to echo, installed or not.
// Dependencies and Tags are weak references by name: they may point at
// packages that have no full record of their own yet.
type Package struct {
	Name         string
	Version      string
	Description  string
	Source       string     // e.g., "pip", "apt", "brew"
	InstalledAt  *time.Time // nil means not installed
	SizeBytes    int64
	Tags         []string
	Dependencies []string
	Metadata     map[string]string
}

// Installed reports whether the package is currently installed.
func (p *Package) Installed() bool {
	return p.InstalledAt != nil
}

// UsagePattern records observed usage evidence for one installed package.
// ImportanceScore is derived from Frequency and LastUsed; it is never set
// directly by callers.
type UsagePattern struct {
	PackageName     string
	Frequency       int
	LastUsed        *time.Time
	ImportanceScore float64
	Contexts        []string
}

// InstallationRecord is one install/uninstall attempt reported by the host
// package manager. echo only reads these; it never creates them on its own
// behalf except through the explicit record command.
type InstallationRecord struct {
	PackageName string
	Operation   string // "install" or "remove"
	Timestamp   time.Time
	Success     bool
	Details     string
}

// NormalizeName returns the canonical comparison key for a package name.
// Package names compare case-insensitively throughout echo.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
