// Package reconcile records payments and waivers against open bills.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/ids"
	"medcore/m/internal/repository"
)

// NoteDueCollection is the default note of payments taken after creation.
const NoteDueCollection = "Due Collection"

type CommissionEvaluator interface {
	Evaluate(ctx context.Context, bill domain.Bill) (*domain.Commission, error)
}

// PaymentOptions override the defaults of one payment.
type PaymentOptions struct {
	Method domain.PaymentMethod
	Note   string
}

type Reconciler struct {
	bills       *repository.Collection[domain.Bill]
	commissions CommissionEvaluator
	now         func() time.Time
	log         zerolog.Logger
}

func New(repos *repository.Set, commissions CommissionEvaluator, clock func() time.Time, log zerolog.Logger) *Reconciler {
	if clock == nil {
		clock = time.Now
	}
	return &Reconciler{bills: repos.Bills, commissions: commissions, now: clock, log: log}
}

// ApplyPayment adds amount to the paid total and waiver to the cumulative
// discount. Every call appends a new payment record; identical calls are
// separate payments.
func (r *Reconciler) ApplyPayment(ctx context.Context, billID string, amount, waiver float64, opts PaymentOptions) (domain.Bill, error) {
	bill, ok := r.bills.Get(billID)
	if !ok {
		return domain.Bill{}, fmt.Errorf("%w: %s", domain.ErrBillNotFound, billID)
	}
	if amount < 0 || waiver < 0 {
		return domain.Bill{}, fmt.Errorf("%w: negative amount", domain.ErrInvalidPayment)
	}
	if amount == 0 && waiver == 0 {
		return domain.Bill{}, fmt.Errorf("%w: nothing to apply", domain.ErrInvalidPayment)
	}
	if opts.Method != "" && !opts.Method.Valid() {
		return domain.Bill{}, fmt.Errorf("%w: unknown method %q", domain.ErrInvalidPayment, opts.Method)
	}
	if amount+waiver > bill.DueAmount+domain.Tolerance {
		return domain.Bill{}, fmt.Errorf("%w: %.2f + %.2f against %.2f due on %s", domain.ErrOverpayment, amount, waiver, bill.DueAmount, billID)
	}

	method := opts.Method
	if method == "" {
		method = bill.PaymentMethod
	}
	if method == "" {
		method = domain.MethodCash
	}
	note := opts.Note
	if note == "" {
		note = NoteDueCollection
	}

	bill.PaidAmount = domain.Round2(bill.PaidAmount + amount)
	bill.Discount = domain.Round2(bill.Discount + waiver)
	bill.DueAmount = domain.Round2(max(0, bill.DueAmount-amount-waiver))
	bill.Status = domain.DeriveStatus(bill.DueAmount, bill.PaidAmount)
	bill.Payments = append(append([]domain.PaymentRecord(nil), bill.Payments...), domain.PaymentRecord{
		ID:     ids.New(ids.PrefixPayment),
		Date:   domain.Timestamp(r.now()),
		Amount: domain.Round2(amount),
		Method: method,
		Note:   note,
	})

	if err := r.bills.Put(ctx, bill); err != nil {
		return domain.Bill{}, fmt.Errorf("save bill %s: %w", billID, err)
	}
	r.log.Info().Str("bill", billID).Float64("amount", amount).Float64("waiver", waiver).Str("status", string(bill.Status)).Msg("payment applied")

	if r.commissions != nil {
		if _, err := r.commissions.Evaluate(ctx, bill); err != nil {
			return bill, fmt.Errorf("commission for %s: %w", billID, err)
		}
	}
	return bill, nil
}

// Settle collects the whole outstanding amount.
func (r *Reconciler) Settle(ctx context.Context, billID string, opts PaymentOptions) (domain.Bill, error) {
	bill, ok := r.bills.Get(billID)
	if !ok {
		return domain.Bill{}, fmt.Errorf("%w: %s", domain.ErrBillNotFound, billID)
	}
	return r.ApplyPayment(ctx, billID, bill.DueAmount, 0, opts)
}
