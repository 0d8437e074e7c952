package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"medcore/m/domain"
)

// RunCache creates the key-value table backing the local cache store.
func RunCache(db *sqlx.DB) error {
	return exec(db, []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at TEXT NOT NULL
        );`,
	})
}

// RunRecords creates one table per entity type for the remote record server.
// Every table keeps the full record payload in data; bills also expose the
// columns used for server-side filtering.
func RunRecords(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS bills (
            id TEXT PRIMARY KEY,
            date TEXT,
            total_amount DOUBLE PRECISION,
            paid_amount DOUBLE PRECISION,
            due_amount DOUBLE PRECISION,
            patient_id TEXT,
            referring_doctor_id TEXT,
            consultant_doctor_id TEXT,
            data TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_bills_date ON bills(date);`,
		`CREATE INDEX IF NOT EXISTS idx_bills_referring ON bills(referring_doctor_id);`,
	}
	for _, e := range domain.Entities {
		if e == domain.EntityBills {
			continue
		}
		schema = append(schema, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            id TEXT PRIMARY KEY,
            data TEXT NOT NULL
        );`, e))
	}
	return exec(db, schema)
}

func exec(db *sqlx.DB, schema []string) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
