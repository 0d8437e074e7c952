// Package seed fills an empty cache with the starter clinic data.
package seed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/hospital"
)

// DefaultAdminPassword is the password of the seeded super admin.
const DefaultAdminPassword = "password"

func Professionals() []domain.Professional {
	return []domain.Professional{
		{ID: "PRO-101", Name: "Dr. Sarah Smith", Degree: "MBBS, MD", Category: "Hospital", CommissionEnabled: true, CommissionRate: 10},
		{ID: "PRO-102", Name: "Dr. James Wilson", Degree: "MBBS, FCPS", Category: "Out", OutType: "Doctor", CommissionEnabled: true, CommissionRate: 20},
		{ID: "PRO-103", Name: "Metro Pharmacy", Degree: "B.Pharm", Category: "Out", OutType: "Pharmacist", CommissionEnabled: true, CommissionRate: 5},
		{ID: "PRO-104", Name: "John Referral Agent", Degree: "Diploma", Category: "Out", OutType: "Field Refer", CommissionEnabled: true, CommissionRate: 15},
	}
}

func Categories() []domain.ServiceCategory {
	return []domain.ServiceCategory{
		{ID: "CAT1", Name: "OPD"},
		{ID: "CAT2", Name: "Pathology"},
		{ID: "CAT3", Name: "Imaging"},
		{ID: "CAT4", Name: "Pharmacy"},
		{ID: "CAT5", Name: "Emergency"},
	}
}

func Services() []domain.ServiceItem {
	return []domain.ServiceItem{
		{ID: "S1", Category: "OPD", Name: "General Consultation", Price: 500, CommissionRate: 20},
		{ID: "S2", Category: "OPD", Name: "Follow-up Consultation", Price: 300, CommissionRate: 20},
		{ID: "S3", Category: "Pathology", Name: "Complete Blood Count (CBC)", Price: 450, CommissionRate: 15},
		{ID: "S4", Category: "Pathology", Name: "Thyroid Profile", Price: 1200, CommissionRate: 15},
		{ID: "S5", Category: "Pathology", Name: "Blood Sugar (F)", Price: 100, CommissionRate: 15},
	}
}

func Rooms() []domain.Room {
	return []domain.Room{
		{ID: "RM1", Number: "101", Type: "General", PricePerDay: 800, Floor: "1st Floor", Status: "Available"},
		{ID: "RM2", Number: "102", Type: "General", PricePerDay: 800, Floor: "1st Floor", Status: "Available"},
		{ID: "RM3", Number: "201", Type: "AC Cabin", PricePerDay: 2500, Floor: "2nd Floor", Status: "Available"},
		{ID: "RM4", Number: "ICU-1", Type: "ICU", PricePerDay: 5000, Floor: "Ground Floor", Status: "Available"},
	}
}

// Users returns the super admin with a bcrypt hashed password.
func Users() ([]domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return []domain.User{{
		ID:       "U1",
		Name:     "System Administrator",
		Username: "admin",
		Password: string(hash),
		Role:     domain.RoleSuperAdmin,
		Email:    "admin@medcore.local",
		Status:   "active",
	}}, nil
}

// CheckPassword compares a plain password with the stored bcrypt hash.
func CheckPassword(u domain.User, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

type Seeder struct {
	store    *cache.Store
	hospital *hospital.Service
	profile  domain.HospitalConfig
	catalog  []domain.ServiceItem
	log      zerolog.Logger
}

// NewSeeder prepares a seeder. profile is written as the hospital config
// when none is stored yet.
func NewSeeder(store *cache.Store, h *hospital.Service, profile domain.HospitalConfig, log zerolog.Logger) *Seeder {
	return &Seeder{store: store, hospital: h, profile: profile, catalog: Services(), log: log}
}

// WithCatalog replaces the starter service catalog.
func (s *Seeder) WithCatalog(items []domain.ServiceItem) *Seeder {
	s.catalog = items
	return s
}

// Run seeds every starter collection whose cache key is absent and returns
// the entities that were written.
func (s *Seeder) Run() ([]domain.EntityType, error) {
	users, err := Users()
	if err != nil {
		return nil, err
	}
	starters := []struct {
		entity domain.EntityType
		data   any
	}{
		{domain.EntityUsers, users},
		{domain.EntityServices, s.catalog},
		{domain.EntityCategories, Categories()},
		{domain.EntityRooms, Rooms()},
		{domain.EntityProfessionals, Professionals()},
	}

	var seeded []domain.EntityType
	for _, st := range starters {
		wrote, err := s.ensure(cache.CollectionKey(st.entity), st.data)
		if err != nil {
			return seeded, fmt.Errorf("seed %s: %w", st.entity, err)
		}
		if wrote {
			seeded = append(seeded, st.entity)
		}
	}
	for _, e := range domain.Entities {
		if _, err := s.ensure(cache.CollectionKey(e), []json.RawMessage{}); err != nil {
			return seeded, fmt.Errorf("seed %s: %w", e, err)
		}
	}
	if _, err := s.hospital.Ensure(s.profile); err != nil {
		return seeded, err
	}
	if len(seeded) > 0 {
		s.log.Info().Interface("entities", seeded).Msg("seeded starter data")
	}
	return seeded, nil
}

func (s *Seeder) ensure(key cache.Key, data any) (bool, error) {
	ok, err := s.store.Has(key)
	if err != nil || ok {
		return false, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return false, err
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return false, err
	}
	return true, s.store.Write(key, records)
}

// LoadCatalog reads a service catalog CSV with the header
// id,category,name,price,commissionRate. Malformed rows are skipped.
func LoadCatalog(path string, log zerolog.Logger) ([]domain.ServiceItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open service catalog: %w", err)
	}
	defer file.Close()
	return ReadCatalog(file, log)
}

func ReadCatalog(r io.Reader, log zerolog.Logger) ([]domain.ServiceItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	var items []domain.ServiceItem
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn().Err(err).Msg("unable to read catalog row")
			continue
		}
		if len(record) < 4 {
			continue
		}
		id := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[2])
		if id == "" || name == "" || seen[id] {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil || price < 0 {
			log.Warn().Str("id", id).Str("price", record[3]).Msg("skipping catalog row with bad price")
			continue
		}
		item := domain.ServiceItem{ID: id, Category: strings.TrimSpace(record[1]), Name: name, Price: price}
		if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
			rate, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
			if err == nil {
				item.CommissionRate = rate
			}
		}
		seen[id] = true
		items = append(items, item)
	}
	log.Info().Int("rows", len(items)).Msg("loaded service catalog")
	return items, nil
}
