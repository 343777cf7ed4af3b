package core

import (
	"context"
	"path/filepath"
	"testing"

	"cartcore/internal/infra/persistence/memory"
	"cartcore/internal/infra/persistence/sqlite"
)

func TestOpenDurableStoreMemory(t *testing.T) {
	t.Setenv("CARTCORE_STORAGE_DRIVER", "memory")
	store, err := OpenDurableStore(context.Background())
	if err != nil {
		t.Fatalf("OpenDurableStore: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenDurableStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("CARTCORE_STORAGE_DRIVER", "")
	t.Setenv("CARTCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "cartcore.db"))
	store, err := OpenDurableStore(context.Background())
	if err != nil {
		t.Fatalf("OpenDurableStore: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	_ = s.Close()
}

func TestOpenDurableStoreUnknownDriver(t *testing.T) {
	t.Setenv("CARTCORE_STORAGE_DRIVER", "etcd")
	if _, err := OpenDurableStore(context.Background()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenDurableStoreS3RequiresBucket(t *testing.T) {
	t.Setenv("CARTCORE_STORAGE_DRIVER", "s3")
	t.Setenv("CARTCORE_S3_BUCKET", "")
	if _, err := OpenDurableStore(context.Background()); err == nil {
		t.Fatalf("expected bucket required error")
	}
}
