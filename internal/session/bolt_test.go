package session

import (
	"context"
	"path/filepath"
	"testing"
)

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	store, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	if err := store.Set(ctx, KeyToken, "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, KeyEmail, "ada@example.com"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete(ctx, KeyEmail); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	token, ok, err := reopened.Get(ctx, KeyToken)
	if err != nil || !ok || token != "tok" {
		t.Fatalf("expected persisted token, got %q ok=%v err=%v", token, ok, err)
	}
	if _, ok, _ := reopened.Get(ctx, KeyEmail); ok {
		t.Fatalf("expected email to be deleted")
	}
}
