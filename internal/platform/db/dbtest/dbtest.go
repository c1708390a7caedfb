// Package dbtest opens a migrated Postgres pool for store tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mentordash/internal/platform/config"
	"mentordash/internal/platform/db"
)

// Open skips the test unless TEST_DATABASE_URL is set. The schema is
// migrated and every domain table is truncated before returning.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if strings.TrimSpace(dbURL) == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, config.Config{DatabaseURL: dbURL})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := db.Migrate(ctx, pool, MigrationsDir()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE idempotency_keys, payment_statements, job_runs, audit_events, sessions, users, tasks, mentors, teams CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

// MigrationsDir resolves the repository migrations directory from any package.
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}
