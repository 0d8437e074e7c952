package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/logger"
	"medcore/m/internal/registry"
	"medcore/m/internal/remote"
	"medcore/m/internal/repository"
)

func setup(t *testing.T) (*registry.Registry, *repository.Set) {
	t.Helper()
	adapter := remote.NewAdapter(cache.New(cache.NewMemoryBackend()), remote.Options{Logger: logger.Nop()})
	repos := repository.NewSet(adapter)
	clock := func() time.Time { return time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC) }
	return registry.New(repos, clock, logger.Nop()), repos
}

func TestAddPatientNumbersSequentially(t *testing.T) {
	reg, repos := setup(t)
	ctx := context.Background()

	first, err := reg.AddPatient(ctx, registry.PatientInput{Name: " Karim ", Age: 40, Sex: "Male"})
	require.NoError(t, err)
	assert.Equal(t, "P-1001", first.ID)
	assert.Equal(t, "Karim", first.Name)
	assert.Equal(t, "2024-06-03T09:00:00Z", first.RegDate)

	second, err := reg.AddPatient(ctx, registry.PatientInput{Name: "Nadia", Age: 31, Sex: "Female"})
	require.NoError(t, err)
	assert.Equal(t, "P-1002", second.ID)
	assert.Equal(t, 2, repos.Patients.Len())
}

func TestAddPatientValidates(t *testing.T) {
	reg, repos := setup(t)
	_, err := reg.AddPatient(context.Background(), registry.PatientInput{Name: "  ", Age: 20})
	assert.Error(t, err)
	_, err = reg.AddPatient(context.Background(), registry.PatientInput{Name: "Old", Age: 200})
	assert.Error(t, err)
	assert.Zero(t, repos.Patients.Len())
}

func TestAddProfessionalContinuesAfterSeeds(t *testing.T) {
	reg, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, repos.Professionals.Replace(ctx, []domain.Professional{
		{ID: "PRO-101", Name: "Dr. Sarah Smith", Category: "Hospital"},
		{ID: "PRO-104", Name: "John Referral Agent", Category: "Out"},
	}))

	p, err := reg.AddProfessional(ctx, registry.ProfessionalInput{
		Name: "Dr. Rina Das", Category: "Out", OutType: "Field Refer", CommissionEnabled: true, CommissionRate: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "PRO-105", p.ID)
	assert.Len(t, reg.Professionals(), 3)

	_, err = reg.AddProfessional(ctx, registry.ProfessionalInput{Name: "Nobody", Category: "Elsewhere"})
	assert.Error(t, err)
}

func TestSetCommission(t *testing.T) {
	reg, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, repos.Professionals.Put(ctx, domain.Professional{ID: "PRO-101", Name: "Dr. Sarah Smith", Category: "Hospital"}))

	p, err := reg.SetCommission(ctx, "PRO-101", true, 15)
	require.NoError(t, err)
	assert.True(t, p.CommissionEnabled)
	assert.Equal(t, 15.0, p.CommissionRate)

	stored, ok := repos.Professionals.Get("PRO-101")
	require.True(t, ok)
	assert.Equal(t, p, stored)

	_, err = reg.SetCommission(ctx, "PRO-101", true, 120)
	assert.Error(t, err)
	_, err = reg.SetCommission(ctx, "PRO-999", true, 5)
	assert.ErrorIs(t, err, registry.ErrProfessionalNotFound)
}
