package core

import (
	"context"
	"fmt"

	"wardcore/internal/blob"
	"wardcore/internal/infra/persistence/document"
	"wardcore/internal/infra/persistence/memory"
	"wardcore/internal/infra/persistence/postgres"
	"wardcore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageDocument StorageDriver = "document" // one JSON document in a blob store
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions selects and configures the persistent store.
type StorageOptions struct {
	Driver      StorageDriver // default document
	SQLitePath  string
	PostgresDSN string
	// DocumentKey is the blob key of the snapshot document (default hospital-data.json).
	DocumentKey string
	// Blobs backs the document driver.
	Blobs blob.Store
}

// OpenPersistentStore opens the backend named by opts.Driver.
func OpenPersistentStore(ctx context.Context, opts StorageOptions, engine *RulesEngine) (PersistentStore, error) {
	driver := opts.Driver
	if driver == "" {
		driver = StorageDocument
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageDocument:
		if opts.Blobs == nil {
			return nil, fmt.Errorf("storage driver %s requires a blob store", driver)
		}
		return document.NewStore(ctx, opts.Blobs, opts.DocumentKey, engine)
	case StorageSQLite:
		return sqlite.NewStore(opts.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(ctx, opts.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
