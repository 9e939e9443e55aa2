// Package storage holds the SQLite schema, versioned migrations and the
// TimedDB instrumentation wrapper shared by all stores.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one schema change applied inside a transaction.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

// migrations is the ordered chain of schema versions. Append only; never
// edit an applied migration.
var migrations = []migration{
	{1, "baseline schema", migrateBaseline},
}

// LatestSchemaVersion returns the highest known schema version.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion reports the current schema version, 0 for a database without
// version tracking.
// PRE: db is a valid database connection
// POST: returns version >= 0
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var version int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// MigrateDB brings the database schema to the latest version. Safe to run on
// every startup; already-applied migrations are skipped.
// Foreign key enforcement is per connection in SQLite, so it belongs in the
// DSN, not here.
// PRE: db is a valid database connection
// POST: schema at LatestSchemaVersion, WAL enabled
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("storage_event", "event", "migration_applied", "version", m.version, "description", m.description, "db", dbPath)
	}

	return nil
}

// migrateBaseline creates the initial schema. IF NOT EXISTS keeps it safe for
// databases created before version tracking existed.
func migrateBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS student (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		sbu TEXT NOT NULL,
		designation TEXT NOT NULL DEFAULT '',
		experience_years INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS mentor (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		is_internal INTEGER NOT NULL DEFAULT 0,
		student_id TEXT,
		sbu TEXT NOT NULL DEFAULT '',
		designation TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (student_id) REFERENCES student(id)
	);

	CREATE TABLE IF NOT EXISTS course (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		batch_code TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT,
		seat_limit INTEGER NOT NULL DEFAULT 0,
		current_enrolled INTEGER NOT NULL DEFAULT 0,
		total_classes_offered INTEGER,
		food_cost REAL NOT NULL DEFAULT 0,
		other_cost REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (name, batch_code)
	);

	CREATE TABLE IF NOT EXISTS course_mentor_assignment (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		mentor_id TEXT NOT NULL,
		hours_taught REAL NOT NULL DEFAULT 0,
		amount_paid REAL NOT NULL DEFAULT 0,
		UNIQUE (course_id, mentor_id),
		FOREIGN KEY (course_id) REFERENCES course(id),
		FOREIGN KEY (mentor_id) REFERENCES mentor(id)
	);

	CREATE TABLE IF NOT EXISTS course_draft (
		course_id TEXT PRIMARY KEY,
		food_cost REAL,
		other_cost REAL,
		FOREIGN KEY (course_id) REFERENCES course(id)
	);

	CREATE TABLE IF NOT EXISTS draft_mentor_assignment (
		course_id TEXT NOT NULL,
		mentor_id TEXT NOT NULL,
		hours_taught REAL NOT NULL DEFAULT 0,
		amount_paid REAL NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (course_id, mentor_id),
		FOREIGN KEY (course_id) REFERENCES course_draft(course_id)
	);

	CREATE TABLE IF NOT EXISTS enrollment (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		course_id TEXT,
		course_name TEXT NOT NULL DEFAULT '',
		batch_code TEXT NOT NULL DEFAULT '',
		eligibility_status TEXT NOT NULL,
		eligibility_reason TEXT NOT NULL DEFAULT '',
		approval_status TEXT NOT NULL DEFAULT 'Pending',
		completion_status TEXT NOT NULL DEFAULT 'In Progress',
		rejection_reason TEXT NOT NULL DEFAULT '',
		withdrawal_reason TEXT NOT NULL DEFAULT '',
		score REAL,
		classes_attended INTEGER NOT NULL DEFAULT 0,
		total_classes INTEGER NOT NULL DEFAULT 0,
		approved_by TEXT NOT NULL DEFAULT '',
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (student_id) REFERENCES student(id),
		FOREIGN KEY (course_id) REFERENCES course(id)
	);

	CREATE INDEX IF NOT EXISTS idx_enrollment_course ON enrollment(course_id);
	CREATE INDEX IF NOT EXISTS idx_enrollment_student ON enrollment(student_id);
	CREATE INDEX IF NOT EXISTS idx_assignment_course ON course_mentor_assignment(course_id);
	`
	_, err := tx.Exec(schema)
	return err
}
