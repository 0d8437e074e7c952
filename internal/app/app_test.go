package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/app"
	"medcore/m/internal/cache"
	"medcore/m/internal/config"
	"medcore/m/internal/ledger"
	"medcore/m/internal/logger"
	"medcore/m/internal/registry"
)

func testConfig() config.Config {
	return config.Config{
		CacheBackend:    "memory",
		RemoteTimeout:   time.Second,
		OutboxEnabled:   true,
		SyncConcurrency: 2,
	}
}

func quiet() app.Options {
	nop := logger.Nop()
	return app.Options{
		Logger: &nop,
		Clock:  func() time.Time { return time.Date(2024, time.May, 17, 10, 0, 0, 0, time.UTC) },
	}
}

func TestNewSeedsAndLoads(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(), quiet())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 4, a.Repos.Professionals.Len())
	assert.Equal(t, 5, a.Repos.Services.Len())
	assert.Equal(t, 4, a.Repos.Rooms.Len())
	assert.Equal(t, 1, a.Repos.Users.Len())
	assert.Equal(t, "INV-202405-0001", a.Ledger.NextInvoiceID())
}

func TestNewWiresLedgerAndCommission(t *testing.T) {
	a, err := app.New(context.Background(), testConfig(), quiet())
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	bill, err := a.Ledger.CreateBill(ctx, ledger.BillInput{
		WalkIn:                  &ledger.WalkIn{Name: "Rahim", Age: 40},
		ReferringProfessionalID: "PRO-102",
		Items:                   []ledger.ItemInput{{ServiceID: "S1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, bill.TotalAmount)

	c, ok := a.Commissions.ForBill(bill.ID)
	require.True(t, ok)
	assert.Equal(t, "PRO-102", c.ProfessionalID)
	assert.Equal(t, 100.0, c.Amount)

	_, err = a.Trash.SoftDelete(ctx, domain.EntityBills, bill.ID)
	require.NoError(t, err)
	assert.Len(t, a.Trash.List(), 1)
}

func TestNewWithSQLiteCachePersists(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = "sqlite"
	cfg.CacheDSN = filepath.Join(t.TempDir(), "cache.db")

	a, err := app.New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	_, err = a.Registry.AddPatient(context.Background(), registry.PatientInput{Name: "Karim", Age: 40})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	again, err := app.New(context.Background(), cfg, quiet())
	require.NoError(t, err)
	defer again.Close()
	assert.True(t, again.Repos.Patients.Has("P-1001"))
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.CacheBackend = "redis"
	_, err := app.New(context.Background(), cfg, quiet())
	assert.Error(t, err)
}

func TestRawResolvesCollections(t *testing.T) {
	opts := quiet()
	opts.Backend = cache.NewMemoryBackend()
	a, err := app.New(context.Background(), testConfig(), opts)
	require.NoError(t, err)
	defer a.Close()

	raw, err := a.Raw("rooms")
	require.NoError(t, err)
	assert.Len(t, raw.IDs(), 4)

	_, err = a.Raw("pharmacies")
	assert.ErrorIs(t, err, domain.ErrUnknownEntity)
}

func TestNewWarnsWhenProfileIsNotApplied(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "hospital.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("name: Lakeside Clinic\ninvoice_id_prefix: LSC\n"), 0o644))

	cfg := testConfig()
	cfg.CacheBackend = "file"
	cfg.CacheDir = filepath.Join(dir, "cache")
	cfg.HospitalProfile = profile

	var logs bytes.Buffer
	log := zerolog.New(&logs)
	opts := quiet()
	opts.Logger = &log

	a, err := app.New(context.Background(), cfg, opts)
	require.NoError(t, err)
	assert.Equal(t, "LSC", a.Hospital.Numbering().Prefix)
	require.NoError(t, a.Close())
	assert.NotContains(t, logs.String(), "hospital profile not applied")

	require.NoError(t, os.WriteFile(profile, []byte("name: Lakeside Clinic\ninvoice_id_prefix: LKC\n"), 0o644))
	again, err := app.New(context.Background(), cfg, opts)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, "LSC", again.Hospital.Numbering().Prefix)
	assert.Contains(t, logs.String(), "hospital profile not applied")
}
