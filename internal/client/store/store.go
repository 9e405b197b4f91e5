// Package store is the local Entry Store: the journal collection and the set
// of pending remote deletions, each kept as one document in the metadata
// table.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/dailyreflect/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

const (
	EntriesKey    = "reflectionEntries"
	TombstonesKey = "pendingDeletes"
)

// Store persists the entry collection locally.
//
// Loads never fail: unreadable data is logged and treated as empty so the
// journal always opens. Saves are total overwrites.
type Store interface {
	Load(ctx context.Context) []models.Reflection
	Save(ctx context.Context, entries []models.Reflection) error
	LoadTombstones(ctx context.Context) []string
	SaveTombstones(ctx context.Context, ids []string) error
	// SaveAll writes entries and tombstones together.
	SaveAll(ctx context.Context, entries []models.Reflection, tombstones []string) error
}

type MetadataStore struct {
	repo metadata.Repository
	log  logging.Logger
}

var _ Store = (*MetadataStore)(nil)

func NewMetadataStore(repo metadata.Repository, log logging.Logger) *MetadataStore {
	return &MetadataStore{repo: repo, log: log.With("module", "store")}
}

func (s *MetadataStore) Load(ctx context.Context) []models.Reflection {
	raw, err := s.repo.Get(ctx, EntriesKey)
	if err != nil {
		s.log.Warn(ctx, "local entries unreadable, starting empty", "error", err)
		return []models.Reflection{}
	}

	entries, err := models.DecodeCollection(raw)
	if err != nil {
		s.log.Warn(ctx, "local entries corrupted, starting empty", "error", err, "bytes", len(raw))
		return []models.Reflection{}
	}

	return dedupe(entries)
}

func (s *MetadataStore) Save(ctx context.Context, entries []models.Reflection) error {
	raw, err := models.EncodeCollection(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return s.repo.Set(ctx, EntriesKey, raw)
}

func (s *MetadataStore) LoadTombstones(ctx context.Context) []string {
	raw, err := s.repo.Get(ctx, TombstonesKey)
	if err != nil {
		s.log.Warn(ctx, "pending deletes unreadable", "error", err)
		return []string{}
	}
	if len(raw) == 0 {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		s.log.Warn(ctx, "pending deletes corrupted", "error", err)
		return []string{}
	}
	return ids
}

func (s *MetadataStore) SaveTombstones(ctx context.Context, ids []string) error {
	raw, err := encodeIDs(ids)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, TombstonesKey, raw)
}

func (s *MetadataStore) SaveAll(ctx context.Context, entries []models.Reflection, tombstones []string) error {
	entriesRaw, err := models.EncodeCollection(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	tombRaw, err := encodeIDs(tombstones)
	if err != nil {
		return err
	}
	return s.repo.SetMany(ctx, map[string][]byte{
		EntriesKey:    entriesRaw,
		TombstonesKey: tombRaw,
	})
}

func encodeIDs(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode pending deletes: %w", err)
	}
	return raw, nil
}

// dedupe keeps the first occurrence of every id.
func dedupe(entries []models.Reflection) []models.Reflection {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
