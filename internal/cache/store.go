// Package cache is the local persistence surface every other component reads
// and writes through. Collections are stored as one serialized JSON array per
// key and always replaced whole.
package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"medcore/m/domain"
)

// Key names one entry of the cache namespace.
type Key string

const namespace = "medcore_"

const (
	KeySession Key = "session"
	KeyTheme   Key = "theme"
	KeyConfig  Key = "hospital_config"
	KeyOutbox  Key = "outbox"
)

var collectionKeys = map[domain.EntityType]Key{
	domain.EntityUsers:         "users",
	domain.EntityPatients:      "patients",
	domain.EntityProfessionals: "professionals",
	domain.EntityBills:         "bills",
	domain.EntityServices:      "services",
	domain.EntityCategories:    "service_categories",
	domain.EntityAdmissions:    "admitted",
	domain.EntityRooms:         "rooms",
	domain.EntityExpenses:      "expenses",
	domain.EntityCommissions:   "commissions",
	domain.EntityTrash:         "trash",
}

// CollectionKey returns the cache key holding an entity collection.
func CollectionKey(e domain.EntityType) Key {
	if k, ok := collectionKeys[e]; ok {
		return k
	}
	return Key(e)
}

func (k Key) storageKey() string { return namespace + string(k) }

// Backend is a raw key-value persistence surface.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Store serializes access to a Backend. Operations issued from one process are
// strictly ordered; separate processes sharing a backend are last-writer-wins.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Read returns every record stored under key. A missing key reads as empty.
func (s *Store) Read(key Key) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key)
}

// Write replaces the whole collection stored under key.
func (s *Store) Write(key Key, records []json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, records)
}

// Update performs a read-modify-write of one collection without letting other
// calls on this Store interleave.
func (s *Store) Update(key Key, fn func([]json.RawMessage) ([]json.RawMessage, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(key)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.write(key, next)
}

// Has reports whether key holds a value.
func (s *Store) Has(key Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.backend.Get(key.storageKey())
	return ok, err
}

// GetValue decodes a non-collection value into dst, returning false when absent.
func (s *Store) GetValue(key Key, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.backend.Get(key.storageKey())
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutValue stores v under key.
func (s *Store) PutValue(key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Put(key.storageKey(), raw)
}

// Remove deletes key.
func (s *Store) Remove(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Delete(key.storageKey())
}

func (s *Store) read(key Key) ([]json.RawMessage, error) {
	raw, ok, err := s.backend.Get(key.storageKey())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	records := []json.RawMessage{}
	if !ok || len(raw) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return records, nil
}

func (s *Store) write(key Key, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(key.storageKey(), raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
