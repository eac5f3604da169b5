// Package sqlite provides a SQLite-backed persistent store that keeps one row
// per entity and reuses the in-memory implementation for transactions.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"wardcore/internal/infra/persistence/entityrows"
	"wardcore/internal/infra/persistence/memory"
	"wardcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const defaultPath = "wardcore.db"

// Store persists the in-memory state to the entities table. Only the
// collections touched by a transaction are rewritten after it commits.
type Store struct {
	*memory.Store
	db        *sql.DB
	persisted bool
}

// NewStore opens (creating if needed) the database at path and hydrates the
// in-memory store from any saved rows.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between the store's own statements
	db.SetMaxOpenConns(1)
	ctx := context.Background()
	if err := entityrows.SQLite.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, persisted, err := entityrows.Load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore(engine)
	if persisted {
		mem.ImportState(snapshot)
	}
	s := &Store{Store: mem, db: db, persisted: persisted}
	mem.SetPersistFunc(s.persist)
	return s, nil
}

func (s *Store) persist(ctx context.Context, touched []domain.EntityType, state domain.Snapshot) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := entityrows.SQLite.Replace(ctx, tx, state, touched, time.Now()); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// HasPersistedState reports whether a snapshot was found when the store opened.
func (s *Store) HasPersistedState() bool { return s.persisted }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

