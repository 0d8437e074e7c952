package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"medcore/m/domain"
)

// Raw is the type-erased view the recycle bin and backup bundle work with.
type Raw interface {
	Entity() domain.EntityType
	Load(ctx context.Context) error
	Has(id string) bool
	IDs() []string
	// Snapshot returns the serialized record and a human readable label.
	Snapshot(id string) (json.RawMessage, string, bool)
	SnapshotAll() ([]json.RawMessage, error)
	Delete(ctx context.Context, id string) error
	// Insert decodes data and stores it, replacing any record with the same id.
	Insert(ctx context.Context, data json.RawMessage) error
	// Merge adds the records whose ids are not present yet and returns how many were added.
	Merge(ctx context.Context, data []json.RawMessage) (int, error)
}

func (c *Collection[T]) Snapshot(id string) (json.RawMessage, string, bool) {
	rec, ok := c.Get(id)
	if !ok {
		return nil, "", false
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, "", false
	}
	name := id
	if named, ok := any(rec).(domain.Named); ok {
		name = named.DisplayName()
	}
	return raw, name, true
}

func (c *Collection[T]) SnapshotAll() ([]json.RawMessage, error) {
	list := c.All()
	out := make([]json.RawMessage, 0, len(list))
	for _, rec := range list {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c.entity, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, _, err := c.Remove(ctx, id)
	return err
}

func (c *Collection[T]) Insert(ctx context.Context, data json.RawMessage) error {
	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("decode %s: %w", c.entity, err)
	}
	if rec.RecordID() == "" {
		return fmt.Errorf("%s: record has no id", c.entity)
	}
	return c.Put(ctx, rec)
}

func (c *Collection[T]) Merge(ctx context.Context, data []json.RawMessage) (int, error) {
	recs := make([]T, 0, len(data))
	for _, raw := range data {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return 0, fmt.Errorf("decode %s: %w", c.entity, err)
		}
		recs = append(recs, rec)
	}
	return c.Union(ctx, recs)
}

// Union appends the records whose ids are not stored yet. Existing records
// are never overwritten.
func (c *Collection[T]) Union(ctx context.Context, recs []T) (int, error) {
	list := c.All()
	seen := make(map[string]bool, len(list))
	for _, rec := range list {
		seen[rec.RecordID()] = true
	}
	added := 0
	for _, rec := range recs {
		id := rec.RecordID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		list = append(list, rec)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, c.Replace(ctx, list)
}
