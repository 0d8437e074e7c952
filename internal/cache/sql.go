package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores values in the cache_entries table (see migrations.RunCache).
type SQLBackend struct {
	db *sqlx.DB
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (s *SQLBackend) Get(key string) ([]byte, bool, error) {
	var value string
	err := s.db.Get(&value, s.db.Rebind(`SELECT value FROM cache_entries WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SQLBackend) Put(key string, value []byte) error {
	_, err := s.db.Exec(s.db.Rebind(`INSERT INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLBackend) Delete(key string) error {
	_, err := s.db.Exec(s.db.Rebind(`DELETE FROM cache_entries WHERE key = ?`), key)
	return err
}
