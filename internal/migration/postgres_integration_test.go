package migration

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
)

// setupPostgresTestDB creates a test PostgreSQL database connection
// Set POSTGRES_TEST_URL environment variable to run this test
// Example: POSTGRES_TEST_URL="postgres://user@localhost:5432/testdb?sslmode=disable"
func setupPostgresTestDB(t *testing.T) *sql.DB {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open postgres database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping postgres database: %v", err)
	}

	cleanup := func() {
		db.Exec("DROP TABLE IF EXISTS schema_version")
		db.Exec("DROP TABLE IF EXISTS test_sessions")
		db.Exec("DROP TABLE IF EXISTS test_users")
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		db.Close()
	})

	return db
}

// TestPostgresApplyMigrations verifies the runner's $n placeholders against PostgreSQL
func TestPostgresApplyMigrations(t *testing.T) {
	db := setupPostgresTestDB(t)

	runner, err := NewRunner(db, setupTestMigrations(map[string]string{
		"001_users.sql": `CREATE TABLE test_users (id TEXT PRIMARY KEY);`,
		"002_sessions.sql": `
			CREATE TABLE test_sessions (
				id BIGSERIAL PRIMARY KEY,
				user_id TEXT NOT NULL REFERENCES test_users(id)
			);
		`,
	}), DriverPostgres)
	if err != nil {
		t.Fatalf("failed to create migration runner: %v", err)
	}

	count, err := runner.ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 migrations applied, got %d", count)
	}

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	if err := runner.SetVersion(1); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if v, _ := runner.GetCurrentVersion(); v != 1 {
		t.Errorf("expected version 1 after SetVersion, got %d", v)
	}
}
