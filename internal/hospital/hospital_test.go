package hospital_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/internal/cache"
	"medcore/m/internal/hospital"
	"medcore/m/internal/invoiceid"
	"medcore/m/internal/logger"
)

func TestGetReturnsDefaultsWhenUnset(t *testing.T) {
	svc := hospital.NewService(cache.New(cache.NewMemoryBackend()), logger.Nop())

	cfg := svc.Get()
	assert.Equal(t, hospital.Default(), cfg)
	assert.Equal(t, invoiceid.Config{Prefix: "INV", DatePart: invoiceid.DateYYYYMM, Padding: 4, Separator: "-"}, svc.Numbering())
}

func TestStoredConfigMergesOverDefaults(t *testing.T) {
	backend := cache.NewMemoryBackend()
	require.NoError(t, backend.Put("medcore_hospital_config", []byte(`{"name":"Lakeside Clinic","invoiceIdPrefix":"LSC"}`)))
	svc := hospital.NewService(cache.New(backend), logger.Nop())

	cfg := svc.Get()
	assert.Equal(t, "Lakeside Clinic", cfg.Name)
	assert.Equal(t, "LSC", cfg.InvoiceIDPrefix)
	assert.Equal(t, "Tk", cfg.CurrencySymbol)
	assert.Equal(t, 4, cfg.InvoiceIDPadding)
}

func TestMalformedConfigFallsBack(t *testing.T) {
	backend := cache.NewMemoryBackend()
	require.NoError(t, backend.Put("medcore_hospital_config", []byte(`{"name":`)))
	svc := hospital.NewService(cache.New(backend), logger.Nop())

	assert.Equal(t, hospital.Default(), svc.Get())
}

func TestEnsureWritesOnce(t *testing.T) {
	svc := hospital.NewService(cache.New(cache.NewMemoryBackend()), logger.Nop())

	first := hospital.Default()
	first.Name = "First"
	wrote, err := svc.Ensure(first)
	require.NoError(t, err)
	assert.True(t, wrote)

	second := hospital.Default()
	second.Name = "Second"
	wrote, err = svc.Ensure(second)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, "First", svc.Get().Name)
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital.yaml")
	profile := "name: Riverside General\ninvoice_id_prefix: RG\ninvoice_id_date_format: YYMMDD\ninvoice_id_padding: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(profile), 0o644))

	cfg, err := hospital.LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Riverside General", cfg.Name)
	assert.Equal(t, "RG", cfg.InvoiceIDPrefix)
	assert.Equal(t, "YYMMDD", cfg.InvoiceIDDateFormat)
	assert.Equal(t, 5, cfg.InvoiceIDPadding)
	assert.Equal(t, "-", cfg.InvoiceIDSeparator)

	_, err = hospital.LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDiffersAndApply(t *testing.T) {
	svc := hospital.NewService(cache.New(cache.NewMemoryBackend()), logger.Nop())
	stored := hospital.Default()
	stored.LastAutoBackup = "2024-05-17T10:00:00Z"
	require.NoError(t, svc.Save(stored))

	assert.False(t, svc.Differs(hospital.Default()))

	profile := hospital.Default()
	profile.InvoiceIDPrefix = "CLN"
	assert.True(t, svc.Differs(profile))

	require.NoError(t, svc.Apply(profile))
	assert.False(t, svc.Differs(profile))
	assert.Equal(t, "CLN", svc.Numbering().Prefix)
	assert.Equal(t, "2024-05-17T10:00:00Z", svc.Get().LastAutoBackup)
}
