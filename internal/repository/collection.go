// Package repository keeps one in-memory, id-indexed view per entity type and
// persists every change through the sync adapter.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"medcore/m/domain"
	"medcore/m/internal/remote"
)

// Collection is the repository of one entity type. Records keep the order
// they were stored in.
type Collection[T domain.Record] struct {
	entity  domain.EntityType
	adapter *remote.Adapter

	mu    sync.RWMutex
	order []string
	byID  map[string]T
}

func NewCollection[T domain.Record](entity domain.EntityType, adapter *remote.Adapter) *Collection[T] {
	return &Collection[T]{entity: entity, adapter: adapter, byID: make(map[string]T)}
}

func (c *Collection[T]) Entity() domain.EntityType { return c.entity }

// Load replaces the in-memory view with the adapter's answer.
func (c *Collection[T]) Load(ctx context.Context) error {
	records, err := c.adapter.FetchCollection(ctx, c.entity)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.entity, err)
	}
	order := make([]string, 0, len(records))
	byID := make(map[string]T, len(records))
	for _, raw := range records {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode %s: %w", c.entity, err)
		}
		id := rec.RecordID()
		if _, dup := byID[id]; !dup {
			order = append(order, id)
		}
		byID[id] = rec
	}

	c.mu.Lock()
	c.order, c.byID = order, byID
	c.mu.Unlock()
	return nil
}

func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := []T{}
	for _, rec := range c.All() {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.byID[id]
	return rec, ok
}

func (c *Collection[T]) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// IDs returns every id in stored order.
func (c *Collection[T]) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Put stores rec, replacing the record with the same id or appending it.
func (c *Collection[T]) Put(ctx context.Context, rec T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.entity, err)
	}
	if err := c.adapter.UpsertRecord(ctx, c.entity, raw); err != nil {
		return err
	}
	c.mu.Lock()
	id := rec.RecordID()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = rec
	c.mu.Unlock()
	return nil
}

// Prepend stores a new record at the front of the collection.
func (c *Collection[T]) Prepend(ctx context.Context, rec T) error {
	list := c.All()
	out := make([]T, 0, len(list)+1)
	out = append(out, rec)
	for _, r := range list {
		if r.RecordID() != rec.RecordID() {
			out = append(out, r)
		}
	}
	return c.Replace(ctx, out)
}

// Remove deletes one record. It reports false when the id is unknown.
func (c *Collection[T]) Remove(ctx context.Context, id string) (T, bool, error) {
	rec, ok := c.Get(id)
	if !ok {
		return rec, false, nil
	}
	if err := c.RemoveWhere(ctx, func(r T) bool { return r.RecordID() == id }); err != nil {
		return rec, false, err
	}
	return rec, true, nil
}

// RemoveWhere drops every matching record in one collection write.
func (c *Collection[T]) RemoveWhere(ctx context.Context, drop func(T) bool) error {
	list := c.All()
	kept := list[:0]
	for _, r := range list {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	return c.Replace(ctx, kept)
}

// Replace persists recs as the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, recs []T) error {
	raws := make([]json.RawMessage, 0, len(recs))
	order := make([]string, 0, len(recs))
	byID := make(map[string]T, len(recs))
	for _, rec := range recs {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.entity, err)
		}
		id := rec.RecordID()
		if _, dup := byID[id]; dup {
			return fmt.Errorf("%s: duplicate id %q", c.entity, id)
		}
		raws = append(raws, raw)
		order = append(order, id)
		byID[id] = rec
	}
	if err := c.adapter.SaveCollection(ctx, c.entity, raws); err != nil {
		return err
	}
	c.mu.Lock()
	c.order, c.byID = order, byID
	c.mu.Unlock()
	return nil
}
