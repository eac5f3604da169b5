package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
		"s3":     NewMockS3ForTests(),
	}
}

func readAll(t *testing.T, s Store, key string) string {
	t.Helper()
	_, rc, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %s: %v", key, err)
	}
	return string(b)
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			info, err := store.Put(ctx, "archive/alerts/a.json", bytes.NewBufferString(`{"v":1}`), PutOptions{ContentType: "application/json"})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Key != "archive/alerts/a.json" || info.Size != 7 {
				t.Fatalf("unexpected info %+v", info)
			}
			if _, err := store.Put(ctx, "archive/alerts/a.json", bytes.NewBufferString("x"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			if _, err := store.Put(ctx, "archive/alerts/a.json", bytes.NewBufferString(`{"v":2}`), PutOptions{Overwrite: true}); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if got := readAll(t, store, "archive/alerts/a.json"); got != `{"v":2}` {
				t.Fatalf("expected overwritten body, got %q", got)
			}
			if _, err := store.Put(ctx, "other.json", bytes.NewBufferString("{}"), PutOptions{}); err != nil {
				t.Fatalf("put other: %v", err)
			}
			list, err := store.List(ctx, "archive/")
			if err != nil || len(list) != 1 {
				t.Fatalf("list: %v %+v", err, list)
			}
			if _, err := store.Head(ctx, "missing.json"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound from head, got %v", err)
			}
			if _, _, err := store.Get(ctx, "missing.json"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound from get, got %v", err)
			}
			if ok, err := store.Delete(ctx, "other.json"); err != nil || !ok {
				t.Fatalf("delete: %v %v", ok, err)
			}
			if ok, err := store.Delete(ctx, "other.json"); err != nil || ok {
				t.Fatalf("second delete should report missing: %v %v", ok, err)
			}
		})
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Options{Driver: DriverMemory})
	if err != nil || store.Driver() != DriverMemory {
		t.Fatalf("memory: %v", err)
	}
	store, err = Open(ctx, Options{FSRoot: t.TempDir()})
	if err != nil || store.Driver() != DriverFilesystem {
		t.Fatalf("default fs: %v", err)
	}
	if _, err := Open(ctx, Options{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if _, err := Open(ctx, Options{Driver: "tape"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
