package storage

import (
	"database/sql"
	"sort"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// An in-memory database exists per connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getTableSQL returns sorted CREATE TABLE statements from sqlite_master.
func getTableSQL(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT sql FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' AND sql IS NOT NULL ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var sqls []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("failed to scan sql: %v", err)
		}
		sqls = append(sqls, normalizeSQL(s))
	}
	sort.Strings(sqls)
	return sqls
}

// normalizeSQL collapses whitespace for comparison.
func normalizeSQL(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"course",
	"course_draft",
	"course_mentor_assignment",
	"draft_mentor_assignment",
	"enrollment",
	"mentor",
	"schema_version",
	"student",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Errorf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if i >= len(tables) {
			t.Errorf("missing table: %s", want)
			continue
		}
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice produces no
// errors and the version remains the same.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}

	version1, _ := SchemaVersion(db)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	version2, _ := SchemaVersion(db)
	if version1 != version2 {
		t.Errorf("version changed after idempotent run: %d -> %d", version1, version2)
	}
}

// TestMigrateDB_SchemaDrift verifies two fresh migration runs produce the
// exact same schema.
func TestMigrateDB_SchemaDrift(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	golden := getTableSQL(t, db)

	db2 := openTestDB(t)
	if err := MigrateDB(db2, ":memory:"); err != nil {
		t.Fatalf("MigrateDB (second) failed: %v", err)
	}
	actual := getTableSQL(t, db2)

	if len(golden) != len(actual) {
		t.Fatalf("schema drift: golden has %d tables, actual has %d", len(golden), len(actual))
	}
	for i := range golden {
		if golden[i] != actual[i] {
			t.Errorf("schema drift at table %d:\ngolden: %s\nactual: %s", i, golden[i], actual[i])
		}
	}
}

// TestMigrateDB_DataSurvival verifies that existing data survives a re-run.
func TestMigrateDB_DataSurvival(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO student (id, employee_id, name, email, sbu) VALUES ('s1', 'EMP-001', 'Test User', 'test@corp.example', 'IT')`)
	if err != nil {
		t.Fatalf("failed to insert test student: %v", err)
	}
	_, err = db.Exec(`INSERT INTO course (id, name, batch_code, start_date, created_at, updated_at) VALUES ('c1', 'Go Fundamentals', 'GO-01', '2026-09-01T00:00:00Z', '2026-08-01T00:00:00Z', '2026-08-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert test course: %v", err)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM student WHERE id = 's1'").Scan(&name); err != nil {
		t.Fatalf("student data lost after migration: %v", err)
	}
	if name != "Test User" {
		t.Errorf("student name = %q, want %q", name, "Test User")
	}

	var batch string
	if err := db.QueryRow("SELECT batch_code FROM course WHERE id = 'c1'").Scan(&batch); err != nil {
		t.Fatalf("course data lost after migration: %v", err)
	}
	if batch != "GO-01" {
		t.Errorf("course batch_code = %q, want %q", batch, "GO-01")
	}
}

// TestMigrateDB_VersionProgression verifies that SchemaVersion reports 0
// before migration and the correct version after.
func TestMigrateDB_VersionProgression(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	v, err = SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != LatestSchemaVersion() {
		t.Errorf("post-migration version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_ExistingDB verifies MigrateDB works on a database that
// already has tables but no schema_version tracking.
func TestMigrateDB_ExistingDB(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`CREATE TABLE student (id TEXT PRIMARY KEY, employee_id TEXT NOT NULL UNIQUE, name TEXT NOT NULL, email TEXT NOT NULL, sbu TEXT NOT NULL, designation TEXT NOT NULL DEFAULT '', experience_years INTEGER NOT NULL DEFAULT 0)`)
	if err != nil {
		t.Fatalf("failed to create pre-migration table: %v", err)
	}
	_, err = db.Exec(`INSERT INTO student (id, employee_id, name, email, sbu) VALUES ('s1', 'EMP-001', 'Early Adopter', 'early@corp.example', 'HR')`)
	if err != nil {
		t.Fatalf("failed to insert pre-migration data: %v", err)
	}

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB on existing db failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM student WHERE id = 's1'").Scan(&name); err != nil {
		t.Fatalf("pre-migration data lost: %v", err)
	}
	if name != "Early Adopter" {
		t.Errorf("name = %q, want %q", name, "Early Adopter")
	}

	v, _ := SchemaVersion(db)
	if v != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion())
	}
}
