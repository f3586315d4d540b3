package store

// Dependency and tag rows are weak name references: there are deliberately no
// foreign keys on them, so a relation may mention a package that has no full
// record yet. The recommendations table is append-only; rows are grouped by
// run_id and never updated in place.
const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY COLLATE NOCASE,
    version TEXT,
    description TEXT,
    source TEXT,
    installed_at TIMESTAMP,
    size_bytes INTEGER,
    metadata TEXT
);

CREATE TABLE IF NOT EXISTS package_dependencies (
    package TEXT NOT NULL COLLATE NOCASE,
    depends_on TEXT NOT NULL COLLATE NOCASE,
    PRIMARY KEY (package, depends_on)
);

CREATE TABLE IF NOT EXISTS package_tags (
    package TEXT NOT NULL COLLATE NOCASE,
    tag TEXT NOT NULL,
    PRIMARY KEY (package, tag)
);

CREATE TABLE IF NOT EXISTS usage_patterns (
    package TEXT PRIMARY KEY COLLATE NOCASE,
    frequency INTEGER NOT NULL,
    last_used TIMESTAMP,
    importance_score REAL
);

CREATE TABLE IF NOT EXISTS usage_contexts (
    package TEXT NOT NULL COLLATE NOCASE,
    context TEXT NOT NULL,
    PRIMARY KEY (package, context)
);

CREATE TABLE IF NOT EXISTS recommendations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    package TEXT NOT NULL,
    score REAL NOT NULL,
    reason TEXT,
    category TEXT,
    source TEXT,
    created_at TIMESTAMP NOT NULL,
    metadata TEXT
);

CREATE TABLE IF NOT EXISTS installation_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL COLLATE NOCASE,
    operation TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    success BOOLEAN NOT NULL,
    details TEXT
);

CREATE INDEX IF NOT EXISTS idx_deps_package ON package_dependencies(package);
CREATE INDEX IF NOT EXISTS idx_tags_package ON package_tags(package);
CREATE INDEX IF NOT EXISTS idx_contexts_package ON usage_contexts(package);
CREATE INDEX IF NOT EXISTS idx_recs_run ON recommendations(run_id);
CREATE INDEX IF NOT EXISTS idx_recs_created ON recommendations(created_at);
CREATE INDEX IF NOT EXISTS idx_history_package ON installation_history(package);
CREATE INDEX IF NOT EXISTS idx_history_timestamp ON installation_history(timestamp);
`
