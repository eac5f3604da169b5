package core_test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"wardcore/internal/blob"
	"wardcore/internal/core"
	"wardcore/internal/infra/persistence/document"
)

func TestOpenPersistentStoreDrivers(t *testing.T) {
	ctx := context.Background()
	engine := core.NewDefaultRulesEngine()

	mem, err := core.OpenPersistentStore(ctx, core.StorageOptions{Driver: core.StorageMemory}, engine)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if mem.HasPersistedState() {
		t.Fatalf("memory store never has persisted state")
	}

	if _, err := core.OpenPersistentStore(ctx, core.StorageOptions{}, engine); err == nil {
		t.Fatalf("document driver without blobs should fail")
	}
	doc, err := core.OpenPersistentStore(ctx, core.StorageOptions{Blobs: blob.NewMemory()}, engine)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if _, ok := doc.(*document.Store); !ok {
		t.Fatalf("default driver should be the document store, got %T", doc)
	}

	lite, err := core.OpenPersistentStore(ctx, core.StorageOptions{Driver: core.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "ward.db")}, engine)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	_ = lite.Close()

	if _, err := core.OpenPersistentStore(ctx, core.StorageOptions{Driver: "mongo"}, engine); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestSeedIfEmptyOnlySeedsFreshStores(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemory()
	store, err := core.OpenPersistentStore(ctx, core.StorageOptions{Driver: core.StorageDocument, Blobs: blobs}, core.NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	svc := core.NewService(store)
	seededNow, err := svc.SeedIfEmpty(ctx)
	if err != nil || !seededNow {
		t.Fatalf("expected seeding, got %v %v", seededNow, err)
	}
	if again, err := svc.SeedIfEmpty(ctx); err != nil || again {
		t.Fatalf("second call must not reseed: %v %v", again, err)
	}

	reopened, err := core.OpenPersistentStore(ctx, core.StorageOptions{Driver: core.StorageDocument, Blobs: blobs}, core.NewDefaultRulesEngine())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	svc2 := core.NewService(reopened)
	if seededAgain, err := svc2.SeedIfEmpty(ctx); err != nil || seededAgain {
		t.Fatalf("persisted store must not be reseeded: %v %v", seededAgain, err)
	}
	if !reflect.DeepEqual(svc.Snapshot(), svc2.Snapshot()) {
		t.Fatalf("reloaded snapshot differs from seeded state")
	}
}
