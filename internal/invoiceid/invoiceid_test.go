package invoiceid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medcore/m/domain"
	"medcore/m/internal/invoiceid"
)

var may2024 = time.Date(2024, time.May, 17, 10, 0, 0, 0, time.UTC)

func TestNext_FirstInvoice(t *testing.T) {
	cfg := invoiceid.Config{Prefix: "INV", DatePart: invoiceid.DateYYYYMM, Padding: 4, Separator: "-"}
	assert.Equal(t, "INV-202405-0001", invoiceid.Next(nil, cfg, may2024))
}

func TestNext_Defaults(t *testing.T) {
	assert.Equal(t, "0001", invoiceid.Next(nil, invoiceid.Config{}, may2024))
	assert.Equal(t, "B-0008", invoiceid.Next([]string{"B-0007"}, invoiceid.Config{Prefix: "B"}, may2024))
}

func TestNext_DateParts(t *testing.T) {
	tests := []struct {
		part invoiceid.DatePart
		want string
	}{
		{invoiceid.DateNone, "INV/01"},
		{invoiceid.DateYYYYMM, "INV/202405/01"},
		{invoiceid.DateYYYYMMDD, "INV/20240517/01"},
		{invoiceid.DateYYMM, "INV/2405/01"},
		{invoiceid.DateYYMMDD, "INV/240517/01"},
		{"weekly", "INV/01"},
	}
	for _, tt := range tests {
		t.Run(string(tt.part), func(t *testing.T) {
			cfg := invoiceid.Config{Prefix: "INV", DatePart: tt.part, Padding: 2, Separator: "/"}
			assert.Equal(t, tt.want, invoiceid.Next(nil, cfg, may2024))
		})
	}
}

func TestNext_SkipsNonNumericAndUsesMax(t *testing.T) {
	ids := []string{"INV-202404-0009", "INV-202405-0003", "INV-manual", "legacy-12abc", ""}
	cfg := invoiceid.Config{Prefix: "INV", DatePart: invoiceid.DateYYYYMM}
	assert.Equal(t, "INV-202405-0013", invoiceid.Next(ids, cfg, may2024))
}

func TestNext_Monotonic(t *testing.T) {
	cfg := invoiceid.Config{Prefix: "INV", DatePart: invoiceid.DateYYYYMM, Padding: 4, Separator: "-"}
	var ids []string
	prev := 0
	for i := 0; i < 25; i++ {
		id := invoiceid.Next(ids, cfg, may2024)
		assert.NotContains(t, ids, id)
		seq, ok := invoiceid.Sequence(id, "-")
		assert.True(t, ok)
		assert.Greater(t, seq, prev)
		prev = seq
		ids = append(ids, id)
	}
}

func TestNext_PaddingOverflow(t *testing.T) {
	cfg := invoiceid.Config{Prefix: "INV", Padding: 2}
	assert.Equal(t, "INV-100", invoiceid.Next([]string{"INV-99"}, cfg, may2024))
}

func TestFromHospital(t *testing.T) {
	cfg := invoiceid.FromHospital(domain.HospitalConfig{
		InvoiceIDPrefix:     "INV",
		InvoiceIDDateFormat: "YYMM",
		InvoiceIDPadding:    3,
		InvoiceIDSeparator:  "_",
	})
	assert.Equal(t, "INV_2405_001", invoiceid.Next(nil, cfg, may2024))
}

func TestNextNumbered(t *testing.T) {
	assert.Equal(t, "P-1001", invoiceid.NextNumbered(nil, "P", 1000))
	assert.Equal(t, "P-1043", invoiceid.NextNumbered([]string{"P-1042", "P-abc", "X-5000"}, "P", 1000))
	assert.Equal(t, "PRO-105", invoiceid.NextNumbered([]string{"PRO-101", "PRO-104"}, "PRO", 100))
}
