package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ChurchPortal/models"
)

var ErrNotAuthenticated = errors.New("admin session is not authenticated")

// CacheSnapshot is a point-in-time copy of the mirror for handlers to
// project and serialize. LastError is non-empty after a failed refresh while
// Records still holds the last-known-good data.
type CacheSnapshot struct {
	Records   []models.Record
	Loaded    bool
	IsLoading bool
	LastError string
	Mutating  []string
}

// CollectionCache mirrors one remote collection for one admin session.
// Remote is the source of truth: a refresh replaces the mirror wholesale and
// a confirmed mutation is folded in as a targeted patch. Mutations are never
// applied speculatively; rejecting the wrong applicant is worse than a
// one-second spinner.
type CollectionCache struct {
	kind  models.RecordKind
	store RecordStore
	gate  *SessionGate

	mu         sync.Mutex
	records    []models.Record
	loaded     bool
	isLoading  bool
	lastErr    error
	inFlight   map[string]bool
	generation int
	closed     bool
}

func NewCollectionCache(kind models.RecordKind, store RecordStore, gate *SessionGate) *CollectionCache {
	return &CollectionCache{
		kind:     kind,
		store:    store,
		gate:     gate,
		inFlight: make(map[string]bool),
	}
}

func (c *CollectionCache) Kind() models.RecordKind {
	return c.kind
}

// Refresh re-reads the remote collection. On failure the previous records
// stay untouched so the operator sees stale-but-present data plus a retry
// affordance, never a blank list after a successful first load. A result
// arriving for a superseded refresh (or after Close) is discarded.
func (c *CollectionCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if c.gate != nil && c.gate.Current().Phase != models.SessionAuthenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if c.store == nil {
		c.mu.Unlock()
		return ErrStoreUnavailable
	}
	c.generation++
	gen := c.generation
	c.isLoading = true
	c.lastErr = nil
	c.mu.Unlock()

	records, err := c.store.List(ctx, c.kind)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		// stale response guard
		return nil
	}

	c.isLoading = false
	if err != nil {
		c.lastErr = err
		return err
	}

	c.records = records
	c.loaded = true
	return nil
}

// ApplyMutation folds a confirmed remote patch into the mirrored record,
// preserving order and every untouched field. A missing id is a no-op: the
// record was deleted out from under us and the next refresh settles it.
func (c *CollectionCache) ApplyMutation(id string, patch models.RecordPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if c.records[i].ID != id {
			continue
		}
		if patch.Status != nil {
			c.records[i].Status = *patch.Status
		}
		if len(patch.Fields) > 0 {
			fields := make(map[string]string, len(c.records[i].Fields)+len(patch.Fields))
			for k, v := range c.records[i].Fields {
				fields[k] = v
			}
			for k, v := range patch.Fields {
				fields[k] = v
			}
			c.records[i].Fields = fields
		}
		return
	}
}

// ApplyRemoval drops the record after a confirmed remote deletion.
func (c *CollectionCache) ApplyRemoval(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.records {
		if c.records[i].ID == id {
			c.records = append(c.records[:i:i], c.records[i+1:]...)
			return
		}
	}
}

// Lookup returns a copy of the mirrored record.
func (c *CollectionCache) Lookup(id string) (models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range c.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.Record{}, false
}

// BeginMutation marks a record as having an outstanding remote mutation.
// It reports false when one is already in flight, which is how duplicate
// gestures for the same record get ignored until resolution.
func (c *CollectionCache) BeginMutation(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight[id] {
		return false
	}
	c.inFlight[id] = true
	return true
}

func (c *CollectionCache) EndMutation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}

func (c *CollectionCache) Snapshot() CacheSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := CacheSnapshot{
		Records:   make([]models.Record, len(c.records)),
		Loaded:    c.loaded,
		IsLoading: c.isLoading,
	}
	copy(snap.Records, c.records)
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	for id := range c.inFlight {
		snap.Mutating = append(snap.Mutating, id)
	}
	return snap
}

// Close tears the mirror down when the owning session ends. Any refresh
// still in flight resolves into the generation guard and is discarded.
func (c *CollectionCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.generation++
	c.records = nil
	c.loaded = false
	c.isLoading = false
	c.lastErr = nil
}
