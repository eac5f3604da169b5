package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"wardcore/internal/blob"
	"wardcore/pkg/domain"
)

// Archiver receives history entries trimmed by the retention policy after the
// trimming transaction has committed.
type Archiver interface {
	Archive(ctx context.Context, evictions []domain.Eviction) error
}

// ArchivePrefix is the blob key prefix evicted entries are written under.
const ArchivePrefix = "archive"

const maxKeyAttempts = 16

// BlobArchiver writes each eviction as a JSON object to a blob store.
type BlobArchiver struct {
	blobs blob.Store
}

// NewBlobArchiver returns an archiver writing to blobs.
func NewBlobArchiver(blobs blob.Store) *BlobArchiver {
	return &BlobArchiver{blobs: blobs}
}

// ArchiveKey returns archive/<kind>/<entity-id>/<unix-nanos>.json. Alert
// evictions have no owning entity and use "all".
func ArchiveKey(e domain.Eviction) string {
	owner := e.EntityID
	if owner == "" {
		owner = "all"
	}
	return path.Join(ArchivePrefix, string(e.Kind), owner, fmt.Sprintf("%d.json", e.EvictedAt.UnixNano()))
}

// Archive writes every eviction, continuing past failures and joining their errors.
func (a *BlobArchiver) Archive(ctx context.Context, evictions []domain.Eviction) error {
	var errs []error
	for _, e := range evictions {
		payload, err := json.Marshal(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode %s eviction: %w", e.Kind, err))
			continue
		}
		if err := a.put(ctx, e, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// put never overwrites an earlier archive; a key taken by an eviction with
// the same timestamp gets a numeric suffix.
func (a *BlobArchiver) put(ctx context.Context, e domain.Eviction, payload []byte) error {
	key := ArchiveKey(e)
	base := strings.TrimSuffix(key, ".json")
	for attempt := 1; ; attempt++ {
		_, err := a.blobs.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"kind": string(e.Kind), "entity": string(e.Entity)},
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, blob.ErrExists) || attempt >= maxKeyAttempts {
			return fmt.Errorf("archive %s: %w", key, err)
		}
		key = fmt.Sprintf("%s-%d.json", base, attempt)
	}
}
