// Package recordstore is the reference remote record server the sync adapter
// talks to. Records are kept as JSON payloads in one table per collection.
package recordstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"medcore/m/domain"
)

var ErrInvalidRecord = errors.New("record must be a JSON object")

// BillFilter narrows bill listings. Zero fields match everything.
type BillFilter struct {
	PatientID          string
	ReferringDoctorID  string
	ConsultantDoctorID string
	From               string
	To                 string
	DueOnly            bool
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// billColumns mirrors the bill fields kept outside the payload for filtering.
type billColumns struct {
	ID                 string  `json:"id"`
	Date               string  `json:"date"`
	TotalAmount        float64 `json:"totalAmount"`
	PaidAmount         float64 `json:"paidAmount"`
	DueAmount          float64 `json:"dueAmount"`
	PatientID          string  `json:"patientId"`
	ReferringDoctorID  string  `json:"referringDoctorId"`
	ConsultantDoctorID string  `json:"consultantDoctorId"`
}

// List returns every record of entity. The filter only applies to bills.
func (s *Store) List(ctx context.Context, entity domain.EntityType, f BillFilter) ([]json.RawMessage, error) {
	query := fmt.Sprintf(`SELECT data FROM %s`, entity)
	var where []string
	var args []any
	if entity == domain.EntityBills {
		where, args = f.clauses()
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	var rows []string
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", entity, err)
	}
	out := make([]json.RawMessage, 0, len(rows))
	for _, data := range rows {
		out = append(out, json.RawMessage(data))
	}
	return out, nil
}

func (f BillFilter) clauses() ([]string, []any) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if f.PatientID != "" {
		add(`patient_id = ?`, f.PatientID)
	}
	if f.ReferringDoctorID != "" {
		add(`referring_doctor_id = ?`, f.ReferringDoctorID)
	}
	if f.ConsultantDoctorID != "" {
		add(`consultant_doctor_id = ?`, f.ConsultantDoctorID)
	}
	if f.From != "" {
		add(`substr(date, 1, 10) >= ?`, domain.DateKey(f.From))
	}
	if f.To != "" {
		add(`substr(date, 1, 10) <= ?`, domain.DateKey(f.To))
	}
	if f.DueOnly {
		where = append(where, `due_amount > 0.01`)
	}
	return where, args
}

// Get returns nil without error when the id is unknown.
func (s *Store) Get(ctx context.Context, entity domain.EntityType, id string) (json.RawMessage, error) {
	var data string
	err := s.db.GetContext(ctx, &data, s.db.Rebind(fmt.Sprintf(`SELECT data FROM %s WHERE id = ?`, entity)), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", entity, id, err)
	}
	return json.RawMessage(data), nil
}

// Upsert stores the record, assigning an id when the payload has none. It
// returns the id the record was stored under.
func (s *Store) Upsert(ctx context.Context, entity domain.EntityType, data json.RawMessage) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return "", ErrInvalidRecord
	}
	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.NewString()
		fields["id"] = id
		raw, err := json.Marshal(fields)
		if err != nil {
			return "", err
		}
		data = raw
	}

	if entity == domain.EntityBills {
		var cols billColumns
		if err := json.Unmarshal(data, &cols); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO bills
            (id, date, total_amount, paid_amount, due_amount, patient_id, referring_doctor_id, consultant_doctor_id, data)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET
                date = excluded.date,
                total_amount = excluded.total_amount,
                paid_amount = excluded.paid_amount,
                due_amount = excluded.due_amount,
                patient_id = excluded.patient_id,
                referring_doctor_id = excluded.referring_doctor_id,
                consultant_doctor_id = excluded.consultant_doctor_id,
                data = excluded.data`),
			id, cols.Date, cols.TotalAmount, cols.PaidAmount, cols.DueAmount,
			nullIfEmpty(cols.PatientID), nullIfEmpty(cols.ReferringDoctorID), nullIfEmpty(cols.ConsultantDoctorID), string(data))
		if err != nil {
			return "", fmt.Errorf("upsert bill %s: %w", id, err)
		}
		return id, nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES (?, ?)
        ON CONFLICT(id) DO UPDATE SET data = excluded.data`, entity)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), id, string(data)); err != nil {
		return "", fmt.Errorf("upsert %s %s: %w", entity, id, err)
	}
	return id, nil
}

// Delete removes the record. Unknown ids are not an error.
func (s *Store) Delete(ctx context.Context, entity domain.EntityType, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, entity)
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", entity, id, err)
	}
	return nil
}

func nullIfEmpty(val string) *string {
	if val == "" {
		return nil
	}
	return &val
}
