// Package backup exports the ledger to a portable JSON bundle and merges such
// bundles back in.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/repository"
)

type Mode string

const (
	ModeFull  Mode = "full"
	ModeDaily Mode = "daily"
	ModeRange Mode = "range"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeFull, ModeDaily, ModeRange:
		return m, nil
	case "":
		return ModeFull, nil
	}
	return "", fmt.Errorf("unknown backup mode %q", s)
}

var ErrMissingDate = errors.New("backup: date bounds required for this mode")

// ImportFormatError is returned when a bundle lacks a required section or a
// section cannot be decoded. Nothing is merged in that case.
type ImportFormatError struct {
	Missing []string
	Err     error
}

func (e *ImportFormatError) Error() string {
	if len(e.Missing) > 0 {
		return "file format mismatch: missing " + strings.Join(e.Missing, ", ")
	}
	return "file format mismatch: " + e.Err.Error()
}

func (e *ImportFormatError) Unwrap() error { return e.Err }

type ExportInfo struct {
	Timestamp string `json:"timestamp"`
	Mode      Mode   `json:"mode"`
	Range     string `json:"range"`
}

// Bundle is the on-disk backup layout.
type Bundle struct {
	Patients    []domain.Patient       `json:"patients"`
	Bills       []domain.Bill          `json:"bills"`
	Services    []domain.ServiceItem   `json:"services"`
	Users       []domain.User          `json:"users"`
	Commissions []domain.Commission    `json:"commissions"`
	Expenses    []domain.Expense       `json:"expenses"`
	Config      *domain.HospitalConfig `json:"config,omitempty"`
	ExportInfo  ExportInfo             `json:"exportInfo"`
}

// required sections of an importable bundle.
var required = []string{"bills", "patients"}

type Service struct {
	repos  *repository.Set
	config func() domain.HospitalConfig
	now    func() time.Time
	log    zerolog.Logger
}

// New builds the backup service. config may be nil, in which case bundles
// carry no hospital config.
func New(repos *repository.Set, config func() domain.HospitalConfig, clock func() time.Time, log zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repos: repos, config: config, now: clock, log: log}
}

// Export collects the bundle. Daily mode uses from as the single day; range
// mode needs both bounds.
func (s *Service) Export(ctx context.Context, mode Mode, from, to string) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	info := ExportInfo{Timestamp: domain.Timestamp(s.now()), Mode: mode}
	switch mode {
	case ModeFull:
		from, to = "", ""
		info.Range = "all"
	case ModeDaily:
		if from == "" {
			return Bundle{}, ErrMissingDate
		}
		to = from
		info.Range = from
	case ModeRange:
		if from == "" || to == "" {
			return Bundle{}, ErrMissingDate
		}
		info.Range = from + " to " + to
	default:
		return Bundle{}, fmt.Errorf("unknown backup mode %q", mode)
	}

	b := Bundle{
		Patients: s.repos.Patients.Filter(func(p domain.Patient) bool { return domain.InRange(p.RegDate, from, to) }),
		Bills:    s.repos.Bills.Filter(func(b domain.Bill) bool { return domain.InRange(b.Date, from, to) }),
		Services: s.repos.Services.All(),
		Users:    s.repos.Users.All(),
		Commissions: s.repos.Commissions.Filter(func(c domain.Commission) bool {
			return domain.InRange(c.Date, from, to)
		}),
		Expenses:   s.repos.Expenses.Filter(func(e domain.Expense) bool { return domain.InRange(e.Date, from, to) }),
		ExportInfo: info,
	}
	if s.config != nil {
		cfg := s.config()
		b.Config = &cfg
	}
	s.log.Info().
		Str("mode", string(mode)).
		Str("range", info.Range).
		Int("bills", len(b.Bills)).
		Int("patients", len(b.Patients)).
		Msg("backup exported")
	return b, nil
}

// Encode writes the bundle as indented JSON.
func Encode(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// FileName is the conventional download name for a bundle.
func FileName(b Bundle) string {
	return fmt.Sprintf("medcore_%s_backup_%s.json", b.ExportInfo.Mode, domain.DateKey(b.ExportInfo.Timestamp))
}

// Import merges a bundle into the local collections. Records whose id is
// already present are left untouched. The returned map holds how many
// records were added per entity.
func (s *Service) Import(ctx context.Context, data []byte) (map[domain.EntityType]int, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, &ImportFormatError{Err: err}
	}
	var missing []string
	for _, key := range required {
		if raw, ok := sections[key]; !ok || string(raw) == "null" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ImportFormatError{Missing: missing}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &ImportFormatError{Err: err}
	}

	added := make(map[domain.EntityType]int)
	steps := []struct {
		entity domain.EntityType
		merge  func() (int, error)
	}{
		{domain.EntityPatients, func() (int, error) { return s.repos.Patients.Union(ctx, b.Patients) }},
		{domain.EntityBills, func() (int, error) { return s.repos.Bills.Union(ctx, b.Bills) }},
		{domain.EntityServices, func() (int, error) { return s.repos.Services.Union(ctx, b.Services) }},
		{domain.EntityUsers, func() (int, error) { return s.repos.Users.Union(ctx, b.Users) }},
		{domain.EntityCommissions, func() (int, error) { return s.repos.Commissions.Union(ctx, b.Commissions) }},
		{domain.EntityExpenses, func() (int, error) { return s.repos.Expenses.Union(ctx, b.Expenses) }},
	}
	for _, step := range steps {
		n, err := step.merge()
		if err != nil {
			return added, fmt.Errorf("merge %s: %w", step.entity, err)
		}
		added[step.entity] = n
	}
	s.log.Info().Interface("added", added).Msg("backup imported")
	return added, nil
}
