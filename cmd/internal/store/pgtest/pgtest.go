// Package pgtest opens throwaway, migrated Postgres schemas for integration tests.
//
// Tests are opt-in: without MINISOCIAL_TEST_DATABASE_URL they are skipped.
package pgtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"minisocial/cmd/internal/ids"
	"minisocial/cmd/internal/store/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvURL names the variable holding the test database URL.
const EnvURL = "MINISOCIAL_TEST_DATABASE_URL"

// Open returns a pool whose search_path points at a fresh schema with all
// migrations applied. The schema is dropped on test cleanup.
func Open(t testing.TB) *pgxpool.Pool {
	t.Helper()

	url := strings.TrimSpace(os.Getenv(EnvURL))
	if url == "" {
		t.Skipf("%s not set; skipping Postgres integration test", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgtest: connect: %v", err)
	}
	if err := admin.Ping(ctx); err != nil {
		admin.Close()
		if os.Getenv("CI") == "" {
			t.Skipf("pgtest: postgres unreachable: %v", err)
		}
		t.Fatalf("pgtest: ping: %v", err)
	}

	id, err := ids.New(time.Now())
	if err != nil {
		t.Fatalf("pgtest: schema id: %v", err)
	}
	schema := "t_" + strings.ToLower(id)
	quoted := pgx.Identifier{schema}.Sanitize()

	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+quoted); err != nil {
		admin.Close()
		t.Fatalf("pgtest: create schema: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("pgtest: parse url: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("pgtest: open schema pool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer dropCancel()
		if _, err := admin.Exec(dropCtx, "DROP SCHEMA IF EXISTS "+quoted+" CASCADE"); err != nil {
			t.Logf("pgtest: drop schema %s: %v", schema, err)
		}
		admin.Close()
	})

	if err := migrations.Up(ctx, pool, nil); err != nil {
		t.Fatalf("pgtest: migrate: %v", err)
	}
	return pool
}
