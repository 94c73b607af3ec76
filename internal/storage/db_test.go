package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_RequiresConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatal("Open(nil) should fail")
	}
	if _, err := Open(&Config{}); err == nil {
		t.Fatal("Open with empty path should fail")
	}
}

func TestOpen_AutoMigrateCreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "carddex.db")

	db, err := Open(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"cards", "sets", "decks", "deck_entries", "deck_basic_energy", "basic_energy"} {
		var name string
		err := db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
}

func TestOpen_EnablesForeignKeys(t *testing.T) {
	svc := NewTestService(t)

	var enabled int
	if err := svc.DB().Conn().QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("Failed to read pragma: %v", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	svc := NewTestService(t)
	ctx := context.Background()

	err := svc.InTx(ctx, func(r *Repositories) error {
		if err := r.Energy.Set(ctx, "Fire", 3, testTime()); err != nil {
			return err
		}
		return errBoom
	})
	if err == nil {
		t.Fatal("expected error from transaction")
	}

	e, err := svc.Repos().Energy.Get(ctx, "Fire")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if e != nil {
		t.Errorf("write inside failed transaction should be rolled back, got %+v", e)
	}
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	svc := NewTestService(t)
	ctx := context.Background()

	err := svc.InTx(ctx, func(r *Repositories) error {
		return r.Energy.Set(ctx, "Water", 5, testTime())
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	e, err := svc.Repos().Energy.Get(ctx, "Water")
	if err != nil || e == nil {
		t.Fatalf("expected committed row, got %v, %v", e, err)
	}
	if e.Count != 5 {
		t.Errorf("Count = %d, want 5", e.Count)
	}
}

func TestWithTransaction_RePanics(t *testing.T) {
	svc := NewTestService(t)
	ctx := context.Background()

	defer func() {
		if recover() == nil {
			t.Fatal("panic should propagate out of WithTransaction")
		}
		e, err := svc.Repos().Energy.Get(ctx, "Metal")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if e != nil {
			t.Error("write before panic should be rolled back")
		}
	}()

	_ = svc.InTx(ctx, func(r *Repositories) error {
		_ = r.Energy.Set(ctx, "Metal", 1, testTime())
		panic("boom")
	})
}
