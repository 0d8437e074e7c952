package trash_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/logger"
	"medcore/m/internal/remote"
	"medcore/m/internal/repository"
	"medcore/m/internal/trash"
)

func setup(t *testing.T) (*trash.Bin, *repository.Set) {
	t.Helper()
	adapter := remote.NewAdapter(cache.New(cache.NewMemoryBackend()), remote.Options{Logger: logger.Nop()})
	repos := repository.NewSet(adapter)
	clock := func() time.Time { return time.Date(2024, time.May, 17, 12, 0, 0, 0, time.UTC) }
	return trash.New(repos, clock, logger.Nop()), repos
}

func sampleBill() domain.Bill {
	b := domain.Bill{
		ID:         "INV-202405-0001",
		Type:       domain.InvoiceOPD,
		WalkInName: "Rahim",
		WalkInAge:  40,
		Items: []domain.BillItem{
			{ID: "ITEM-1", ServiceID: "S1", Name: "CBC", Quantity: 1, UnitPrice: 500, CommissionRate: 5},
		},
		PaidAmount: 200,
		Payments:   []domain.PaymentRecord{{ID: "PAY-1", Date: "2024-05-17T10:00:00Z", Amount: 200, Method: domain.MethodCash, Note: "Initial Payment"}},
		Date:       "2024-05-17T10:00:00Z",
	}
	b.Recompute()
	return b
}

func TestSoftDeleteRestoreRoundTrip(t *testing.T) {
	bin, repos := setup(t)
	ctx := context.Background()
	original := sampleBill()
	require.NoError(t, repos.Bills.Put(ctx, original))

	item, err := bin.SoftDelete(ctx, domain.EntityBills, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bill", item.Type)
	assert.Equal(t, "Invoice: "+original.ID, item.Name)
	assert.Equal(t, original.ID, item.OriginalID)
	assert.Equal(t, "2024-05-17T12:00:00Z", item.DeletedAt)
	assert.False(t, repos.Bills.Has(original.ID))
	require.Len(t, bin.List(), 1)

	id, err := bin.Restore(ctx, item.ID, trash.ConflictReject)
	require.NoError(t, err)
	assert.Equal(t, original.ID, id)

	restored, ok := repos.Bills.Get(original.ID)
	require.True(t, ok)
	assert.Equal(t, original, restored)
	assert.Empty(t, bin.List())
}

func TestSoftDelete_NewestFirst(t *testing.T) {
	bin, repos := setup(t)
	ctx := context.Background()
	require.NoError(t, repos.Patients.Put(ctx, domain.Patient{ID: "P-1001", Name: "Karim"}))
	require.NoError(t, repos.Rooms.Put(ctx, domain.Room{ID: "RM1", Number: "101"}))

	_, err := bin.SoftDelete(ctx, domain.EntityPatients, "P-1001")
	require.NoError(t, err)
	_, err = bin.SoftDelete(ctx, domain.EntityRooms, "RM1")
	require.NoError(t, err)

	items := bin.List()
	require.Len(t, items, 2)
	assert.Equal(t, "Room 101", items[0].Name)
	assert.Equal(t, "Karim", items[1].Name)
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestSoftDelete_Errors(t *testing.T) {
	bin, _ := setup(t)
	ctx := context.Background()

	_, err := bin.SoftDelete(ctx, domain.EntityBills, "INV-404")
	assert.ErrorIs(t, err, trash.ErrRecordNotFound)

	_, err = bin.SoftDelete(ctx, domain.EntityCommissions, "C-1")
	assert.ErrorIs(t, err, trash.ErrNotTrashable)
}

func TestRestore_Conflicts(t *testing.T) {
	ctx := context.Background()
	prepare := func(t *testing.T) (*trash.Bin, *repository.Set, domain.TrashItem) {
		bin, repos := setup(t)
		require.NoError(t, repos.Patients.Put(ctx, domain.Patient{ID: "P-1001", Name: "Old"}))
		item, err := bin.SoftDelete(ctx, domain.EntityPatients, "P-1001")
		require.NoError(t, err)
		require.NoError(t, repos.Patients.Put(ctx, domain.Patient{ID: "P-1001", Name: "New"}))
		return bin, repos, item
	}

	t.Run("reject", func(t *testing.T) {
		bin, repos, item := prepare(t)
		_, err := bin.Restore(ctx, item.ID, trash.ConflictReject)
		var conflict *trash.RestoreConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "P-1001", conflict.ID)
		p, _ := repos.Patients.Get("P-1001")
		assert.Equal(t, "New", p.Name)
		assert.Len(t, bin.List(), 1)
	})

	t.Run("overwrite", func(t *testing.T) {
		bin, repos, item := prepare(t)
		id, err := bin.Restore(ctx, item.ID, trash.ConflictOverwrite)
		require.NoError(t, err)
		assert.Equal(t, "P-1001", id)
		p, _ := repos.Patients.Get("P-1001")
		assert.Equal(t, "Old", p.Name)
		assert.Equal(t, 1, repos.Patients.Len())
	})

	t.Run("rename", func(t *testing.T) {
		bin, repos, item := prepare(t)
		id, err := bin.Restore(ctx, item.ID, trash.ConflictRename)
		require.NoError(t, err)
		assert.Equal(t, "P-1001-R1", id)
		p, ok := repos.Patients.Get(id)
		require.True(t, ok)
		assert.Equal(t, "Old", p.Name)
		assert.Equal(t, 2, repos.Patients.Len())
		assert.Empty(t, bin.List())
	})
}

func TestPurgeAndEmpty(t *testing.T) {
	bin, repos := setup(t)
	ctx := context.Background()
	for _, id := range []string{"S1", "S2", "S3"} {
		require.NoError(t, repos.Services.Put(ctx, domain.ServiceItem{ID: id, Name: id}))
		_, err := bin.SoftDelete(ctx, domain.EntityServices, id)
		require.NoError(t, err)
	}

	first := bin.List()[0]
	require.NoError(t, bin.Purge(ctx, first.ID))
	assert.ErrorIs(t, bin.Purge(ctx, first.ID), trash.ErrTrashItemNotFound)
	_, err := bin.Restore(ctx, first.ID, trash.ConflictReject)
	assert.ErrorIs(t, err, trash.ErrTrashItemNotFound)

	n, err := bin.EmptyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, bin.List())
	assert.Equal(t, 0, repos.Services.Len())
}

func TestParseConflictPolicy(t *testing.T) {
	p, err := trash.ParseConflictPolicy("rename")
	require.NoError(t, err)
	assert.Equal(t, trash.ConflictRename, p)
	_, err = trash.ParseConflictPolicy("merge")
	assert.Error(t, err)
}
