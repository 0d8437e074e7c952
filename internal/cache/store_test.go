package cache_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/database"
	"medcore/m/internal/migrations"
)

func backends(t *testing.T) map[string]cache.Backend {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.RunCache(db))

	return map[string]cache.Backend{
		"memory": cache.NewMemoryBackend(),
		"file":   cache.NewFileBackend(t.TempDir()),
		"sql":    cache.NewSQLBackend(db),
	}
}

func TestStore_ReadMissingKeyIsEmpty(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := cache.New(backend)
			records, err := store.Read(cache.CollectionKey(domain.EntityBills))
			require.NoError(t, err)
			assert.NotNil(t, records)
			assert.Empty(t, records)
		})
	}
}

func TestStore_WriteReplacesWholeCollection(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := cache.New(backend)
			key := cache.CollectionKey(domain.EntityPatients)

			require.NoError(t, store.Write(key, []json.RawMessage{
				json.RawMessage(`{"id":"P1"}`),
				json.RawMessage(`{"id":"P2"}`),
			}))
			require.NoError(t, store.Write(key, []json.RawMessage{json.RawMessage(`{"id":"P3"}`)}))

			records, err := store.Read(key)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.JSONEq(t, `{"id":"P3"}`, string(records[0]))
		})
	}
}

func TestStore_Update(t *testing.T) {
	store := cache.New(cache.NewMemoryBackend())
	key := cache.CollectionKey(domain.EntityRooms)
	require.NoError(t, store.Write(key, []json.RawMessage{json.RawMessage(`{"id":"RM1"}`)}))

	err := store.Update(key, func(records []json.RawMessage) ([]json.RawMessage, error) {
		return append(records, json.RawMessage(`{"id":"RM2"}`)), nil
	})
	require.NoError(t, err)

	records, err := store.Read(key)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestStore_Values(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := cache.New(backend)

			var theme string
			found, err := store.GetValue(cache.KeyTheme, &theme)
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, store.PutValue(cache.KeyTheme, "dark"))
			found, err = store.GetValue(cache.KeyTheme, &theme)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "dark", theme)

			has, err := store.Has(cache.KeyTheme)
			require.NoError(t, err)
			assert.True(t, has)

			require.NoError(t, store.Remove(cache.KeyTheme))
			has, err = store.Has(cache.KeyTheme)
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	key := cache.CollectionKey(domain.EntityCommissions)

	first := cache.New(cache.NewFileBackend(dir))
	require.NoError(t, first.Write(key, []json.RawMessage{json.RawMessage(`{"id":"COM-1"}`)}))

	second := cache.New(cache.NewFileBackend(dir))
	records, err := second.Read(key)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCollectionKey(t *testing.T) {
	assert.Equal(t, cache.Key("service_categories"), cache.CollectionKey(domain.EntityCategories))
	assert.Equal(t, cache.Key("admitted"), cache.CollectionKey(domain.EntityAdmissions))
	assert.Equal(t, cache.Key("bills"), cache.CollectionKey(domain.EntityBills))
}
