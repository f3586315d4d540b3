package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/echo-systems/echo/internal/catalog"
	"github.com/echo-systems/echo/internal/recommender"
)

// Package operations

// UpsertPackage inserts or replaces a package together with its dependency
// and tag relations, mirroring the replace-then-insert handling of the
// relation tables.
func (s *Store) UpsertPackage(pkg *catalog.Package) error {
	metadataJSON, err := json.Marshal(pkg.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT OR REPLACE INTO packages
		(name, version, description, source, installed_at, size_bytes, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query,
		pkg.Name,
		pkg.Version,
		pkg.Description,
		pkg.Source,
		formatNullTime(pkg.InstalledAt),
		pkg.SizeBytes,
		string(metadataJSON),
	); err != nil {
		return fmt.Errorf("failed to insert package %s: %w", pkg.Name, err)
	}

	if _, err := tx.Exec(`DELETE FROM package_dependencies WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear dependencies for %s: %w", pkg.Name, err)
	}
	for _, dep := range pkg.Dependencies {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO package_dependencies (package, depends_on) VALUES (?, ?)`,
			pkg.Name, dep,
		); err != nil {
			return fmt.Errorf("failed to insert dependency %s -> %s: %w", pkg.Name, dep, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM package_tags WHERE package = ?`, pkg.Name); err != nil {
		return fmt.Errorf("failed to clear tags for %s: %w", pkg.Name, err)
	}
	for _, tag := range pkg.Tags {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO package_tags (package, tag) VALUES (?, ?)`,
			pkg.Name, tag,
		); err != nil {
			return fmt.Errorf("failed to insert tag %s for %s: %w", tag, pkg.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit package %s: %w", pkg.Name, err)
	}
	return nil
}

// GetPackage retrieves a package by name (case-insensitive).
func (s *Store) GetPackage(name string) (*catalog.Package, error) {
	query := `
		SELECT name, version, description, source, installed_at, size_bytes, metadata
		FROM packages
		WHERE name = ?
	`

	pkg, err := s.scanPackage(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("package %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get package %s: %w", name, err)
	}

	if err := s.loadRelations(pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// ListPackages returns every known package, installed or not. This is the
// candidate pool the recommender scores against.
func (s *Store) ListPackages() ([]*catalog.Package, error) {
	return s.listPackagesWhere("")
}

// ListInstalled returns only packages with an installation timestamp.
func (s *Store) ListInstalled() ([]*catalog.Package, error) {
	return s.listPackagesWhere("WHERE installed_at IS NOT NULL")
}

// ListCandidates returns the full candidate pool. It satisfies the
// recommender.Store contract; the fuser itself excludes installed packages.
func (s *Store) ListCandidates() ([]*catalog.Package, error) {
	return s.ListPackages()
}

func (s *Store) listPackagesWhere(where string) ([]*catalog.Package, error) {
	query := fmt.Sprintf(`
		SELECT name, version, description, source, installed_at, size_bytes, metadata
		FROM packages
		%s
		ORDER BY name
	`, where)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	defer rows.Close()

	var packages []*catalog.Package
	for rows.Next() {
		pkg, err := s.scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan package row: %w", err)
		}
		packages = append(packages, pkg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}

	for _, pkg := range packages {
		if err := s.loadRelations(pkg); err != nil {
			return nil, err
		}
	}
	return packages, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanPackage(row rowScanner) (*catalog.Package, error) {
	var pkg catalog.Package
	var installedAt sql.NullString
	var metadataJSON sql.NullString

	if err := row.Scan(
		&pkg.Name,
		&pkg.Version,
		&pkg.Description,
		&pkg.Source,
		&installedAt,
		&pkg.SizeBytes,
		&metadataJSON,
	); err != nil {
		return nil, err
	}

	t, err := parseNullTime(installedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse installed_at for %s: %w", pkg.Name, err)
	}
	pkg.InstalledAt = t

	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &pkg.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", pkg.Name, err)
		}
	}
	return &pkg, nil
}

// loadRelations fills a package's dependency and tag lists.
func (s *Store) loadRelations(pkg *catalog.Package) error {
	deps, err := s.stringColumn(
		`SELECT depends_on FROM package_dependencies WHERE package = ? ORDER BY depends_on`, pkg.Name)
	if err != nil {
		return fmt.Errorf("failed to get dependencies for %s: %w", pkg.Name, err)
	}
	pkg.Dependencies = deps

	tags, err := s.stringColumn(
		`SELECT tag FROM package_tags WHERE package = ? ORDER BY tag`, pkg.Name)
	if err != nil {
		return fmt.Errorf("failed to get tags for %s: %w", pkg.Name, err)
	}
	pkg.Tags = tags
	return nil
}

// GetDependents returns all packages that declare a dependency on the given
// package name.
func (s *Store) GetDependents(pkg string) ([]string, error) {
	dependents, err := s.stringColumn(
		`SELECT package FROM package_dependencies WHERE depends_on = ? ORDER BY package`, pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependents for %s: %w", pkg, err)
	}
	return dependents, nil
}

func (s *Store) stringColumn(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Usage pattern operations

// UpsertUsagePattern inserts or replaces a usage pattern and its context set.
func (s *Store) UpsertUsagePattern(p *catalog.UsagePattern) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO usage_patterns (package, frequency, last_used, importance_score)
		VALUES (?, ?, ?, ?)
	`,
		p.PackageName,
		p.Frequency,
		formatNullTime(p.LastUsed),
		p.ImportanceScore,
	); err != nil {
		return fmt.Errorf("failed to upsert usage pattern for %s: %w", p.PackageName, err)
	}

	if _, err := tx.Exec(`DELETE FROM usage_contexts WHERE package = ?`, p.PackageName); err != nil {
		return fmt.Errorf("failed to clear contexts for %s: %w", p.PackageName, err)
	}
	for _, ctx := range p.Contexts {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO usage_contexts (package, context) VALUES (?, ?)`,
			p.PackageName, ctx,
		); err != nil {
			return fmt.Errorf("failed to insert context %s for %s: %w", ctx, p.PackageName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage pattern for %s: %w", p.PackageName, err)
	}
	return nil
}

// GetUsagePattern retrieves the usage pattern for one package. Returns nil
// (no error) when no usage has been observed.
func (s *Store) GetUsagePattern(name string) (*catalog.UsagePattern, error) {
	var p catalog.UsagePattern
	var lastUsed sql.NullString

	err := s.db.QueryRow(`
		SELECT package, frequency, last_used, importance_score
		FROM usage_patterns
		WHERE package = ?
	`, name).Scan(&p.PackageName, &p.Frequency, &lastUsed, &p.ImportanceScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage pattern for %s: %w", name, err)
	}

	t, err := parseNullTime(lastUsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_used for %s: %w", name, err)
	}
	p.LastUsed = t

	contexts, err := s.stringColumn(
		`SELECT context FROM usage_contexts WHERE package = ? ORDER BY context`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get contexts for %s: %w", name, err)
	}
	p.Contexts = contexts
	return &p, nil
}

// ListUsagePatterns returns all usage patterns, highest frequency first.
func (s *Store) ListUsagePatterns() ([]*catalog.UsagePattern, error) {
	rows, err := s.db.Query(`
		SELECT package, frequency, last_used, importance_score
		FROM usage_patterns
		ORDER BY frequency DESC, package
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*catalog.UsagePattern
	for rows.Next() {
		var p catalog.UsagePattern
		var lastUsed sql.NullString
		if err := rows.Scan(&p.PackageName, &p.Frequency, &lastUsed, &p.ImportanceScore); err != nil {
			return nil, fmt.Errorf("failed to scan usage pattern row: %w", err)
		}
		t, err := parseNullTime(lastUsed)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_used for %s: %w", p.PackageName, err)
		}
		p.LastUsed = t
		patterns = append(patterns, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage patterns: %w", err)
	}

	for _, p := range patterns {
		contexts, err := s.stringColumn(
			`SELECT context FROM usage_contexts WHERE package = ? ORDER BY context`, p.PackageName)
		if err != nil {
			return nil, fmt.Errorf("failed to get contexts for %s: %w", p.PackageName, err)
		}
		p.Contexts = contexts
	}
	return patterns, nil
}

// Recommendation operations

// SaveRecommendations appends one run's rows in a single transaction. Rows
// are never updated afterwards; every run gets fresh rows under its own
// run_id, so concurrent runs cannot corrupt each other's output.
func (s *Store) SaveRecommendations(runID string, recs []recommender.Recommendation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`
		INSERT INTO recommendations (run_id, package, score, reason, category, source, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		metadataJSON, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", rec.PackageName, err)
		}
		if _, err := stmt.Exec(
			runID,
			rec.PackageName,
			rec.Score,
			rec.Reason,
			rec.Category,
			rec.Source,
			rec.Timestamp.Format(time.RFC3339),
			string(metadataJSON),
		); err != nil {
			return fmt.Errorf("failed to insert recommendation for %s: %w", rec.PackageName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

// LatestRunID returns the run_id of the most recent recommendation run, or
// "" when no runs exist.
func (s *Store) LatestRunID() (string, error) {
	var runID string
	err := s.db.QueryRow(`
		SELECT run_id FROM recommendations
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	return runID, nil
}

// ListRecommendations returns the rows of one run in descending score order.
func (s *Store) ListRecommendations(runID string, limit int) ([]*recommender.Recommendation, error) {
	query := `
		SELECT package, score, reason, category, source, created_at, metadata
		FROM recommendations
		WHERE run_id = ?
		ORDER BY score DESC, package
	`
	args := []any{runID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []*recommender.Recommendation
	for rows.Next() {
		var rec recommender.Recommendation
		var createdAt string
		var metadataJSON sql.NullString

		if err := rows.Scan(
			&rec.PackageName,
			&rec.Score,
			&rec.Reason,
			&rec.Category,
			&rec.Source,
			&createdAt,
			&metadataJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation row: %w", err)
		}

		rec.Timestamp, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return recs, nil
}

// RunSummary describes one recommendation run for history listings.
type RunSummary struct {
	RunID     string
	CreatedAt time.Time
	Count     int
}

// ListRuns returns recommendation runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, MIN(created_at), COUNT(*)
		FROM recommendations
		GROUP BY run_id
		ORDER BY MIN(created_at) DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var createdAt string
		if err := rows.Scan(&run.RunID, &createdAt, &run.Count); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run created_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// Installation history operations

// RecordInstallation appends one install/uninstall attempt.
func (s *Store) RecordInstallation(rec *catalog.InstallationRecord) error {
	if _, err := s.db.Exec(`
		INSERT INTO installation_history (package, operation, timestamp, success, details)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.PackageName,
		rec.Operation,
		rec.Timestamp.Format(time.RFC3339),
		rec.Success,
		rec.Details,
	); err != nil {
		return fmt.Errorf("failed to record installation for %s: %w", rec.PackageName, err)
	}
	return nil
}

// ListInstallationHistory returns installation records, newest first,
// optionally filtered to one package.
func (s *Store) ListInstallationHistory(limit int, pkg string) ([]*catalog.InstallationRecord, error) {
	query := `
		SELECT package, operation, timestamp, success, details
		FROM installation_history
	`
	args := []any{}
	if pkg != "" {
		query += " WHERE package = ?"
		args = append(args, pkg)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list installation history: %w", err)
	}
	defer rows.Close()

	var records []*catalog.InstallationRecord
	for rows.Next() {
		var rec catalog.InstallationRecord
		var ts string
		if err := rows.Scan(&rec.PackageName, &rec.Operation, &ts, &rec.Success, &rec.Details); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history timestamp: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return records, nil
}

// RecentFailures returns the normalized names of packages whose most recent
// trouble is a failed install attempt inside the window. The fuser uses this
// as a hard exclusion filter.
func (s *Store) RecentFailures(window time.Duration) (map[string]bool, error) {
	since := time.Now().Add(-window)

	names, err := s.stringColumn(`
		SELECT DISTINCT package
		FROM installation_history
		WHERE operation = 'install' AND success = 0 AND timestamp >= ?
	`, since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to get recent failures: %w", err)
	}

	failures := make(map[string]bool, len(names))
	for _, name := range names {
		failures[catalog.NormalizeName(name)] = true
	}
	return failures, nil
}

// Timestamp helpers: all times are stored as RFC3339 strings; NULL maps to a
// nil *time.Time.

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
