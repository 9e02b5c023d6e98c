package session

import (
	"context"
	"os"
	"testing"

	"colognehub/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE session_fields`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	a := NewPostgres(pool, "tab-a")
	b := NewPostgres(pool, "tab-b")

	if err := a.Set(ctx, KeyToken, "one"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := a.Set(ctx, KeyToken, "two"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := a.Get(ctx, KeyToken)
	if err != nil || !ok || v != "two" {
		t.Fatalf("expected overwritten token, got %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := b.Get(ctx, KeyToken); ok {
		t.Fatalf("expected namespaces to be isolated")
	}
	if err := a.Delete(ctx, KeyToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := a.Get(ctx, KeyToken); ok {
		t.Fatalf("expected token deleted")
	}
}
