package remote

import (
	"encoding/json"
	"fmt"
	"time"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/ids"
)

type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// OutboxEntry is one remote write waiting to be replayed.
type OutboxEntry struct {
	Ref      string            `json:"ref"`
	Entity   domain.EntityType `json:"entity"`
	ID       string            `json:"id"`
	Op       Op                `json:"op"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
	QueuedAt string            `json:"queuedAt"`
	Attempts int               `json:"attempts"`
}

// Outbox persists failed remote writes under the cache outbox key. Entries are
// coalesced per entity and id; the newest write wins and moves to the back.
type Outbox struct {
	store *cache.Store
	now   func() time.Time
}

func NewOutbox(store *cache.Store) *Outbox {
	return &Outbox{store: store, now: time.Now}
}

// Enqueue records a write, replacing any pending write for the same record.
func (o *Outbox) Enqueue(entity domain.EntityType, id string, op Op, payload json.RawMessage) error {
	entry := OutboxEntry{
		Ref:      ids.New("OBX"),
		Entity:   entity,
		ID:       id,
		Op:       op,
		Payload:  payload,
		QueuedAt: o.now().UTC().Format(time.RFC3339Nano),
	}
	return o.update(func(entries []OutboxEntry) []OutboxEntry {
		kept := entries[:0]
		for _, e := range entries {
			if e.Entity == entity && e.ID == id {
				entry.Attempts = e.Attempts
				continue
			}
			kept = append(kept, e)
		}
		return append(kept, entry)
	})
}

// Pending returns queued entries in replay order.
func (o *Outbox) Pending() ([]OutboxEntry, error) {
	records, err := o.store.Read(cache.KeyOutbox)
	if err != nil {
		return nil, err
	}
	return decodeEntries(records)
}

// Ack drops replayed entries. Entries re-queued since they were read carry a
// new ref and are kept.
func (o *Outbox) Ack(refs ...string) error {
	done := make(map[string]bool, len(refs))
	for _, r := range refs {
		done[r] = true
	}
	return o.update(func(entries []OutboxEntry) []OutboxEntry {
		kept := entries[:0]
		for _, e := range entries {
			if !done[e.Ref] {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// Discard drops any pending write for one record.
func (o *Outbox) Discard(entity domain.EntityType, id string) error {
	return o.update(func(entries []OutboxEntry) []OutboxEntry {
		kept := entries[:0]
		for _, e := range entries {
			if e.Entity != entity || e.ID != id {
				kept = append(kept, e)
			}
		}
		return kept
	})
}

// MarkFailed bumps the attempt counter of entries that could not be replayed.
func (o *Outbox) MarkFailed(refs ...string) error {
	failed := make(map[string]bool, len(refs))
	for _, r := range refs {
		failed[r] = true
	}
	return o.update(func(entries []OutboxEntry) []OutboxEntry {
		for i := range entries {
			if failed[entries[i].Ref] {
				entries[i].Attempts++
			}
		}
		return entries
	})
}

// Overlay applies pending writes for entity on top of a fresh server answer so
// that unsynced local edits survive a refresh.
func (o *Outbox) Overlay(entity domain.EntityType, records []json.RawMessage) ([]json.RawMessage, error) {
	pending, err := o.Pending()
	if err != nil {
		return nil, err
	}
	for _, e := range pending {
		if e.Entity != entity {
			continue
		}
		idx := indexOf(records, e.ID)
		switch {
		case e.Op == OpDelete && idx >= 0:
			records = append(records[:idx], records[idx+1:]...)
		case e.Op == OpUpsert && idx >= 0:
			records[idx] = e.Payload
		case e.Op == OpUpsert:
			records = append(records, e.Payload)
		}
	}
	return records, nil
}

func (o *Outbox) update(fn func([]OutboxEntry) []OutboxEntry) error {
	return o.store.Update(cache.KeyOutbox, func(records []json.RawMessage) ([]json.RawMessage, error) {
		entries, err := decodeEntries(records)
		if err != nil {
			return nil, err
		}
		entries = fn(entries)
		out := make([]json.RawMessage, 0, len(entries))
		for _, e := range entries {
			raw, err := json.Marshal(e)
			if err != nil {
				return nil, err
			}
			out = append(out, raw)
		}
		return out, nil
	})
}

func decodeEntries(records []json.RawMessage) ([]OutboxEntry, error) {
	entries := make([]OutboxEntry, 0, len(records))
	for _, raw := range records {
		var e OutboxEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("decode outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
