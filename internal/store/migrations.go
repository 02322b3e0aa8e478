package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means a fresh database.
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// migrateV1 creates all initial tables and indexes.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS samples (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			sampled_at TEXT NOT NULL,
			hour       INTEGER NOT NULL,
			units      REAL NOT NULL,
			stops      INTEGER NOT NULL,
			idle_time  REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at    TEXT NOT NULL,
			horizon        INTEGER NOT NULL,
			actual         REAL NOT NULL,
			projected      REAL NOT NULL,
			absolute_error REAL NOT NULL,
			relative_error REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS current_snapshot (
			id       INTEGER PRIMARY KEY CHECK (id = 1),
			saved_at TEXT NOT NULL,
			payload  TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS projection_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at    TEXT NOT NULL,
			command     TEXT NOT NULL,
			version     TEXT NOT NULL,
			snapshot_id TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS projections (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES projection_runs(id),
			horizon          INTEGER NOT NULL,
			cumulative_units REAL NOT NULL,
			efficiency       REAL NOT NULL,
			confidence       REAL NOT NULL,
			gap              REAL NOT NULL
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_samples_hour ON samples(hour)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_horizon ON outcomes(horizon)`,
		`CREATE INDEX IF NOT EXISTS idx_projections_run ON projections(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projections_horizon ON projections(horizon)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
