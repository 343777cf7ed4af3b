package core

import (
	"context"
	"fmt"
	"os"

	"cartcore/internal/infra/persistence/memory"
	"cartcore/internal/infra/persistence/postgres"
	s3store "cartcore/internal/infra/persistence/s3"
	"cartcore/internal/infra/persistence/sqlite"
	"cartcore/pkg/domain"
)

// StorageDriver identifies a concrete durable store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageS3       StorageDriver = "s3"       // S3-compatible object store
)

// OpenDurableStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	CARTCORE_STORAGE_DRIVER: memory|sqlite|postgres|s3 (default sqlite)
//	CARTCORE_SQLITE_PATH: path to sqlite file (default ./cartcore.db)
//	CARTCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	CARTCORE_S3_BUCKET and friends when driver=s3
func OpenDurableStore(ctx context.Context) (domain.DurableStore, error) {
	driver := os.Getenv("CARTCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("CARTCORE_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("CARTCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	case StorageS3:
		return s3store.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
