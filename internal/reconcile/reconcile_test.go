package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medcore/m/domain"
	"medcore/m/internal/cache"
	"medcore/m/internal/commission"
	"medcore/m/internal/logger"
	"medcore/m/internal/reconcile"
	"medcore/m/internal/remote"
	"medcore/m/internal/repository"
)

func setup(t *testing.T) (*reconcile.Reconciler, *repository.Set, domain.Bill) {
	t.Helper()
	adapter := remote.NewAdapter(cache.New(cache.NewMemoryBackend()), remote.Options{Logger: logger.Nop()})
	repos := repository.NewSet(adapter)
	ctx := context.Background()
	require.NoError(t, repos.Professionals.Put(ctx, domain.Professional{ID: "PRO-101", CommissionEnabled: true, CommissionRate: 10}))

	bill := domain.Bill{
		ID:                      "INV-202405-0001",
		WalkInName:              "Rahim",
		ReferringProfessionalID: "PRO-101",
		Items: []domain.BillItem{
			{ID: "1", Name: "Consultation", Quantity: 1, UnitPrice: 500},
			{ID: "2", Name: "X-Ray", Quantity: 1, UnitPrice: 300},
		},
		PaidAmount:    400,
		PaymentMethod: domain.MethodCard,
		Payments:      []domain.PaymentRecord{{ID: "PAY-1", Amount: 400, Method: domain.MethodCard, Note: "Initial Payment"}},
		Date:          "2024-05-17T10:00:00Z",
	}
	bill.Recompute()
	require.NoError(t, repos.Bills.Put(ctx, bill))

	engine := commission.NewEngine(repos, logger.Nop())
	_, err := engine.Evaluate(ctx, bill)
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC) }
	return reconcile.New(repos, engine, clock, logger.Nop()), repos, bill
}

func TestApplyPayment_WithWaiverSettles(t *testing.T) {
	r, repos, bill := setup(t)

	got, err := r.ApplyPayment(context.Background(), bill.ID, 300, 100, reconcile.PaymentOptions{})
	require.NoError(t, err)

	assert.Equal(t, 700.0, got.PaidAmount)
	assert.Equal(t, 100.0, got.Discount)
	assert.Equal(t, 0.0, got.DueAmount)
	assert.Equal(t, domain.StatusPaid, got.Status)
	require.Len(t, got.Payments, 2)
	last := got.Payments[1]
	assert.Equal(t, 300.0, last.Amount)
	assert.Equal(t, reconcile.NoteDueCollection, last.Note)
	assert.Equal(t, domain.MethodCard, last.Method)
	assert.Equal(t, "2024-05-20T09:00:00Z", last.Date)

	stored, _ := repos.Bills.Get(bill.ID)
	assert.Equal(t, got, stored)

	// the waiver lowers the flat commission basis
	rows := repos.Commissions.All()
	require.Len(t, rows, 1)
	assert.Equal(t, 70.0, rows[0].Amount)
}

func TestApplyPayment_PartialKeepsPartial(t *testing.T) {
	r, _, bill := setup(t)
	got, err := r.ApplyPayment(context.Background(), bill.ID, 100, 0, reconcile.PaymentOptions{Method: domain.MethodMobileBanking, Note: "bKash"})
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.DueAmount)
	assert.Equal(t, domain.StatusPartial, got.Status)
	assert.Equal(t, domain.MethodMobileBanking, got.Payments[1].Method)
	assert.Equal(t, "bKash", got.Payments[1].Note)
}

func TestApplyPayment_IdenticalCallsAreDistinct(t *testing.T) {
	r, _, bill := setup(t)
	ctx := context.Background()
	_, err := r.ApplyPayment(ctx, bill.ID, 100, 0, reconcile.PaymentOptions{})
	require.NoError(t, err)
	got, err := r.ApplyPayment(ctx, bill.ID, 100, 0, reconcile.PaymentOptions{})
	require.NoError(t, err)

	require.Len(t, got.Payments, 3)
	assert.NotEqual(t, got.Payments[1].ID, got.Payments[2].ID)
	assert.Equal(t, 600.0, got.PaidAmount)
}

func TestApplyPayment_Rejections(t *testing.T) {
	r, repos, bill := setup(t)
	ctx := context.Background()

	_, err := r.ApplyPayment(ctx, "INV-404", 10, 0, reconcile.PaymentOptions{})
	assert.ErrorIs(t, err, domain.ErrBillNotFound)

	_, err = r.ApplyPayment(ctx, bill.ID, 0, 0, reconcile.PaymentOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = r.ApplyPayment(ctx, bill.ID, -5, 0, reconcile.PaymentOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = r.ApplyPayment(ctx, bill.ID, 10, 0, reconcile.PaymentOptions{Method: "Cheque"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayment)

	_, err = r.ApplyPayment(ctx, bill.ID, 350, 100, reconcile.PaymentOptions{})
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	stored, _ := repos.Bills.Get(bill.ID)
	assert.Equal(t, bill, stored)
}

func TestApplyPayment_ToleranceAbsorbsRounding(t *testing.T) {
	r, _, bill := setup(t)
	got, err := r.ApplyPayment(context.Background(), bill.ID, 400.005, 0, reconcile.PaymentOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.DueAmount)
	assert.Equal(t, domain.StatusPaid, got.Status)
}

func TestSettle(t *testing.T) {
	r, _, bill := setup(t)
	got, err := r.Settle(context.Background(), bill.ID, reconcile.PaymentOptions{Method: domain.MethodCash})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, 800.0, got.PaidAmount)
}
