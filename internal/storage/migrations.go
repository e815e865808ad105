package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Trips: the system-of-record table. Travelers and schedule items are
-- normalized child tables rather than embedded JSON.
CREATE TABLE IF NOT EXISTS trips (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'planning',
    start_date TIMESTAMP,
    end_date TIMESTAMP,
    destinations TEXT,
    total_cost REAL DEFAULT 0,
    notes TEXT,
    primary_email TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_trips_slug ON trips(slug);
CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);
CREATE INDEX IF NOT EXISTS idx_trips_updated ON trips(updated_at);

CREATE TABLE IF NOT EXISTS travelers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trip_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    email TEXT,
    role TEXT NOT NULL DEFAULT 'companion',
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_travelers_trip ON travelers(trip_id);
CREATE INDEX IF NOT EXISTS idx_travelers_email ON travelers(email);
CREATE INDEX IF NOT EXISTS idx_travelers_name ON travelers(name);

CREATE TABLE IF NOT EXISTS schedule_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trip_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    title TEXT,
    nights INTEGER DEFAULT 0,
    cost REAL DEFAULT 0,
    transit_minutes INTEGER DEFAULT 0,
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_schedule_trip ON schedule_items(trip_id);
CREATE INDEX IF NOT EXISTS idx_schedule_kind ON schedule_items(kind);

-- Search surface: one denormalized row per trip for fast candidate
-- retrieval without scanning child tables.
CREATE TABLE IF NOT EXISTS search_surface (
    trip_id INTEGER PRIMARY KEY,
    trip_name TEXT NOT NULL,
    name_normalized TEXT,
    slug TEXT,
    destinations TEXT,
    destinations_normalized TEXT,
    traveler_names TEXT,
    traveler_names_normalized TEXT,
    traveler_emails TEXT,
    emails_normalized TEXT,
    primary_client_name TEXT,
    primary_email TEXT,
    status TEXT,
    traveler_count INTEGER DEFAULT 0,
    phonetic_tokens TEXT,
    search_tokens TEXT,
    last_synced TIMESTAMP,
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_surface_slug ON search_surface(slug);
CREATE INDEX IF NOT EXISTS idx_surface_synced ON search_surface(last_synced);

-- Facts: derived aggregates, idempotent upsert keyed by trip id.
CREATE TABLE IF NOT EXISTS trip_facts (
    trip_id INTEGER PRIMARY KEY,
    total_nights INTEGER DEFAULT 0,
    hotel_count INTEGER DEFAULT 0,
    activity_count INTEGER DEFAULT 0,
    total_cost REAL DEFAULT 0,
    transit_minutes INTEGER DEFAULT 0,
    traveler_count INTEGER DEFAULT 0,
    traveler_names TEXT,
    traveler_emails TEXT,
    version INTEGER NOT NULL DEFAULT 1,
    last_computed TIMESTAMP,
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

-- Dirty queue: at-least-once work markers. Duplicate markers for the same
-- (trip, reason, timestamp) are free via INSERT OR IGNORE.
CREATE TABLE IF NOT EXISTS dirty_queue (
    trip_id INTEGER NOT NULL,
    reason TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE(trip_id, reason, created_at)
);

CREATE INDEX IF NOT EXISTS idx_dirty_trip ON dirty_queue(trip_id);

-- Semantic components: typed weighted facts for structured (non-LIKE)
-- matching. Fully replaced on reindex.
CREATE TABLE IF NOT EXISTS semantic_components (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trip_id INTEGER NOT NULL,
    component_type TEXT NOT NULL,
    value TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    synonyms TEXT,
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_components_trip ON semantic_components(trip_id);
CREATE INDEX IF NOT EXISTS idx_components_type ON semantic_components(component_type);
CREATE INDEX IF NOT EXISTS idx_components_value ON semantic_components(value);
`

const migrationV1Down = `
DROP TABLE IF EXISTS semantic_components;
DROP TABLE IF EXISTS dirty_queue;
DROP TABLE IF EXISTS trip_facts;
DROP TABLE IF EXISTS search_surface;
DROP TABLE IF EXISTS schedule_items;
DROP TABLE IF EXISTS travelers;
DROP TABLE IF EXISTS trips;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Check if schema_version table exists
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	// Parse current version (default to 0.0.0 if no migrations applied or table doesn't exist)
	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	// Run migrations in order
	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var currentVersion string
	err := db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	for i := len(AllMigrations) - 1; i >= 0; i-- {
		migration := AllMigrations[i]
		if migration.Version != currentVersion {
			continue
		}
		if _, err := db.ExecContext(ctx, migration.Down); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
			return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
		}
		return nil
	}

	return fmt.Errorf("migration %s not found", currentVersion)
}
