// Package registry registers patients and referring professionals with
// sequential human readable ids.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/ids"
	"medcore/m/internal/invoiceid"
	"medcore/m/internal/repository"
)

const (
	patientFloor      = 1000
	professionalFloor = 100
)

var ErrProfessionalNotFound = errors.New("professional not found")

type PatientInput struct {
	Name    string `json:"name" validate:"required"`
	Age     int    `json:"age" validate:"gte=0,lte=150"`
	Sex     string `json:"sex" validate:"omitempty,oneof=Male Female Other"`
	Mobile  string `json:"mobile" validate:"omitempty,max=20"`
	Address string `json:"address"`
}

type ProfessionalInput struct {
	Name              string  `json:"name" validate:"required"`
	Degree            string  `json:"degree"`
	Category          string  `json:"category" validate:"required,oneof=Hospital Out"`
	OutType           string  `json:"outType" validate:"omitempty,oneof=Doctor Pharmacist 'Field Refer'"`
	Phone             string  `json:"phone"`
	CommissionEnabled bool    `json:"commissionEnabled"`
	CommissionRate    float64 `json:"commissionRate" validate:"gte=0,lte=100"`
}

type Registry struct {
	repos    *repository.Set
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
}

func New(repos *repository.Set, clock func() time.Time, log zerolog.Logger) *Registry {
	if clock == nil {
		clock = time.Now
	}
	return &Registry{repos: repos, validate: validator.New(), now: clock, log: log}
}

// AddPatient stores a new patient under the next P-<n> id.
func (r *Registry) AddPatient(ctx context.Context, in PatientInput) (domain.Patient, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := r.validate.Struct(in); err != nil {
		return domain.Patient{}, fmt.Errorf("invalid patient: %w", err)
	}
	p := domain.Patient{
		ID:      invoiceid.NextNumbered(r.repos.Patients.IDs(), ids.PrefixPatient, patientFloor),
		Name:    in.Name,
		Age:     in.Age,
		Sex:     in.Sex,
		Mobile:  in.Mobile,
		Address: in.Address,
		RegDate: domain.Timestamp(r.now()),
		History: []string{},
	}
	if err := r.repos.Patients.Put(ctx, p); err != nil {
		return domain.Patient{}, err
	}
	r.log.Info().Str("patient_id", p.ID).Msg("patient registered")
	return p, nil
}

// AddProfessional stores a new professional under the next PRO-<n> id.
func (r *Registry) AddProfessional(ctx context.Context, in ProfessionalInput) (domain.Professional, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := r.validate.Struct(in); err != nil {
		return domain.Professional{}, fmt.Errorf("invalid professional: %w", err)
	}
	p := domain.Professional{
		ID:                invoiceid.NextNumbered(r.repos.Professionals.IDs(), ids.PrefixProfessional, professionalFloor),
		Name:              in.Name,
		Degree:            in.Degree,
		Category:          in.Category,
		OutType:           in.OutType,
		Phone:             in.Phone,
		CommissionEnabled: in.CommissionEnabled,
		CommissionRate:    in.CommissionRate,
	}
	if err := r.repos.Professionals.Put(ctx, p); err != nil {
		return domain.Professional{}, err
	}
	r.log.Info().Str("professional_id", p.ID).Msg("professional registered")
	return p, nil
}

// SetCommission changes the referral fee policy of a professional. Bills
// already evaluated keep their commission until they are edited or paid.
func (r *Registry) SetCommission(ctx context.Context, id string, enabled bool, rate float64) (domain.Professional, error) {
	p, ok := r.repos.Professionals.Get(id)
	if !ok {
		return domain.Professional{}, fmt.Errorf("%w: %s", ErrProfessionalNotFound, id)
	}
	if err := r.validate.Var(rate, "gte=0,lte=100"); err != nil {
		return domain.Professional{}, fmt.Errorf("invalid commission rate %.2f: %w", rate, err)
	}
	p.CommissionEnabled = enabled
	p.CommissionRate = rate
	if err := r.repos.Professionals.Put(ctx, p); err != nil {
		return domain.Professional{}, err
	}
	r.log.Info().Str("professional_id", p.ID).Bool("enabled", enabled).Float64("rate", rate).Msg("commission policy changed")
	return p, nil
}

func (r *Registry) Patients() []domain.Patient { return r.repos.Patients.All() }

func (r *Registry) Professionals() []domain.Professional { return r.repos.Professionals.All() }
