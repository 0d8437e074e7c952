// Package hospital manages the facility profile and the invoice numbering
// settings stored with it.
package hospital

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/invoiceid"
)

// Default is the profile used until one is saved.
func Default() domain.HospitalConfig {
	return domain.HospitalConfig{
		Name:                "MedCore Hospital",
		Address:             "123 Health Ave, Medical District",
		Phone:               "+1 (555) 000-1234",
		Email:               "contact@medcore.local",
		Website:             "www.medcore.local",
		SocialMedia:         "@medcore",
		Tagline:             "Precision Care, Intelligent Healing",
		CurrencySymbol:      "Tk",
		TimeZone:            "UTC",
		DateFormat:          "DD/MM/YYYY",
		InvoiceIDPrefix:     "INV",
		InvoiceIDDateFormat: string(invoiceid.DateYYYYMM),
		InvoiceIDPadding:    invoiceid.DefaultPadding,
		InvoiceIDSeparator:  invoiceid.DefaultSeparator,
	}
}

// LoadProfile reads a YAML profile. Keys missing from the file keep their
// default value.
func LoadProfile(path string) (domain.HospitalConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read hospital profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse hospital profile %s: %w", path, err)
	}
	return cfg, nil
}

type Service struct {
	store *cache.Store
	log   zerolog.Logger
}

func NewService(store *cache.Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// Get returns the stored profile merged over the defaults.
func (s *Service) Get() domain.HospitalConfig {
	cfg := Default()
	var raw json.RawMessage
	ok, err := s.store.GetValue(cache.KeyConfig, &raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("hospital config unreadable, using defaults")
		return cfg
	}
	if !ok {
		return cfg
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		s.log.Warn().Err(err).Msg("hospital config malformed, using defaults")
		return Default()
	}
	return cfg
}

func (s *Service) Save(cfg domain.HospitalConfig) error {
	if err := s.store.PutValue(cache.KeyConfig, cfg); err != nil {
		return fmt.Errorf("save hospital config: %w", err)
	}
	return nil
}

// Ensure stores cfg when no profile has been saved yet. It reports whether
// anything was written.
func (s *Service) Ensure(cfg domain.HospitalConfig) (bool, error) {
	ok, err := s.store.Has(cache.KeyConfig)
	if err != nil || ok {
		return false, err
	}
	return true, s.Save(cfg)
}

// Differs reports whether profile would change the stored settings.
// Bookkeeping fields the profile cannot carry are ignored.
func (s *Service) Differs(profile domain.HospitalConfig) bool {
	current := s.Get()
	profile.LastAutoBackup = current.LastAutoBackup
	return !reflect.DeepEqual(current, profile)
}

// Apply saves profile over the stored settings, keeping bookkeeping fields.
func (s *Service) Apply(profile domain.HospitalConfig) error {
	profile.LastAutoBackup = s.Get().LastAutoBackup
	if err := s.Save(profile); err != nil {
		return err
	}
	s.log.Info().Str("name", profile.Name).Str("invoice_prefix", profile.InvoiceIDPrefix).Msg("hospital profile applied")
	return nil
}

// Numbering returns the invoice id settings of the current profile.
func (s *Service) Numbering() invoiceid.Config {
	return invoiceid.FromHospital(s.Get())
}
