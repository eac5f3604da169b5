// Package document persists the whole aggregate as one JSON document under a
// well-known blob key, rewriting it after every committed transaction.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wardcore/internal/blob"
	"wardcore/internal/infra/persistence/memory"
	"wardcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultKey is the blob key the snapshot document is stored under.
const DefaultKey = "hospital-data.json"

// Store mirrors the in-memory state into a single blob.
type Store struct {
	*memory.Store
	blobs     blob.Store
	key       string
	persisted bool
}

// NewStore loads the document at key (DefaultKey when empty) from blobs, if present.
// A document that cannot be decoded is an error rather than a silent reseed.
func NewStore(ctx context.Context, blobs blob.Store, key string, engine *domain.RulesEngine) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("document store requires a blob store")
	}
	if key == "" {
		key = DefaultKey
	}
	mem := memory.NewStore(engine)
	s := &Store{Store: mem, blobs: blobs, key: key}
	snapshot, found, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		mem.ImportState(snapshot)
		s.persisted = true
	}
	mem.SetPersistFunc(s.persist)
	return s, nil
}

func (s *Store) load(ctx context.Context) (domain.Snapshot, bool, error) {
	_, rc, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	defer func() { _ = rc.Close() }()
	var snapshot domain.Snapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode snapshot %s: %w", s.key, err)
	}
	return snapshot, true, nil
}

// persist rewrites the whole document; touched collections are irrelevant here.
func (s *Store) persist(ctx context.Context, _ []domain.EntityType, state domain.Snapshot) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.blobs.Put(ctx, s.key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Overwrite:   true,
	}); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.key, err)
	}
	return nil
}

// HasPersistedState reports whether a document existed when the store opened.
func (s *Store) HasPersistedState() bool { return s.persisted }

