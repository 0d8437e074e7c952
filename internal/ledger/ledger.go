// Package ledger owns the bill lifecycle: creation, edits and the derived
// totals and status. Payments after creation go through package reconcile.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/ids"
	"medcore/m/internal/invoiceid"
	"medcore/m/internal/repository"
)

// NoteInitialPayment marks the payment taken when a bill is created.
const NoteInitialPayment = "Initial Payment"

// CommissionEvaluator recomputes the referral commission of a bill.
type CommissionEvaluator interface {
	Evaluate(ctx context.Context, bill domain.Bill) (*domain.Commission, error)
}

type Options struct {
	// Numbering returns the current invoice id settings.
	Numbering func() invoiceid.Config
	Clock     func() time.Time
	Logger    zerolog.Logger
}

type Ledger struct {
	bills       *repository.Collection[domain.Bill]
	services    *repository.Collection[domain.ServiceItem]
	expenses    *repository.Collection[domain.Expense]
	commissions CommissionEvaluator
	numbering   func() invoiceid.Config
	now         func() time.Time
	validate    *validator.Validate
	log         zerolog.Logger
}

func New(repos *repository.Set, commissions CommissionEvaluator, opts Options) *Ledger {
	l := &Ledger{
		bills:       repos.Bills,
		services:    repos.Services,
		expenses:    repos.Expenses,
		commissions: commissions,
		numbering:   opts.Numbering,
		now:         opts.Clock,
		validate:    newValidator(),
		log:         opts.Logger,
	}
	if l.numbering == nil {
		l.numbering = func() invoiceid.Config { return invoiceid.Config{} }
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// NextInvoiceID previews the number the next bill would get.
func (l *Ledger) NextInvoiceID() string {
	return invoiceid.Next(l.bills.IDs(), l.numbering(), l.now())
}

// CreateBill validates input, prices it and appends the bill. The commission
// for the referring professional is evaluated after the bill is stored.
func (l *Ledger) CreateBill(ctx context.Context, in BillInput) (domain.Bill, error) {
	if err := l.check(in); err != nil {
		return domain.Bill{}, err
	}
	items, err := l.buildItems(in.Items)
	if err != nil {
		return domain.Bill{}, err
	}

	now := l.now()
	created := now
	if !in.Date.IsZero() {
		created = in.Date
	}
	bill := domain.Bill{
		Type:           in.Type,
		Items:          items,
		Discount:       domain.Round2(in.Discount),
		PaidAmount:     domain.Round2(in.InitialPayment),
		PaymentMethod:  in.PaymentMethod,
		Payments:       []domain.PaymentRecord{},
		Date:           domain.Timestamp(created),
		AuthorUsername: in.AuthorUsername,
		AuthorName:     in.AuthorName,
	}
	if bill.Type == "" {
		bill.Type = domain.InvoiceGeneral
	}
	if bill.PaymentMethod == "" {
		bill.PaymentMethod = domain.MethodCash
	}
	applyIdentity(&bill, in)
	bill.Recompute()

	if bill.Discount > bill.TotalAmount+domain.Tolerance {
		return domain.Bill{}, fieldError("BillInput.Discount", "lte_total")
	}
	if bill.PaidAmount > bill.NetAmount()+domain.Tolerance {
		return domain.Bill{}, fmt.Errorf("initial payment %.2f on net %.2f: %w", bill.PaidAmount, bill.NetAmount(), domain.ErrOverpayment)
	}
	if bill.PaidAmount > 0 {
		bill.Payments = append(bill.Payments, domain.PaymentRecord{
			ID:     ids.New(ids.PrefixPayment),
			Date:   domain.Timestamp(now),
			Amount: bill.PaidAmount,
			Method: bill.PaymentMethod,
			Note:   NoteInitialPayment,
		})
	}

	bill.ID = strings.TrimSpace(in.ID)
	if bill.ID == "" {
		bill.ID = invoiceid.Next(l.bills.IDs(), l.numbering(), now)
	}
	if l.bills.Has(bill.ID) {
		return domain.Bill{}, &DuplicateInvoiceError{ID: bill.ID}
	}

	if err := l.bills.Put(ctx, bill); err != nil {
		return domain.Bill{}, fmt.Errorf("save bill %s: %w", bill.ID, err)
	}
	l.log.Info().Str("bill", bill.ID).Float64("total", bill.TotalAmount).Str("status", string(bill.Status)).Msg("bill created")

	if err := l.evaluate(ctx, bill); err != nil {
		return bill, err
	}
	return bill, nil
}

// UpdateBill replaces the items, identification, referral and discount of a
// bill. Payment history, paid amount and creation date are kept; the
// commission is recomputed from scratch.
func (l *Ledger) UpdateBill(ctx context.Context, id string, in BillInput) (domain.Bill, error) {
	bill, ok := l.bills.Get(id)
	if !ok {
		return domain.Bill{}, fmt.Errorf("%w: %s", domain.ErrBillNotFound, id)
	}
	if err := l.check(in); err != nil {
		return domain.Bill{}, err
	}
	discount := domain.Round2(in.Discount)
	if discount < bill.Discount-domain.Tolerance {
		return domain.Bill{}, fmt.Errorf("%w: %.2f below %.2f", ErrDiscountDecrease, discount, bill.Discount)
	}
	items, err := l.buildItems(in.Items)
	if err != nil {
		return domain.Bill{}, err
	}

	if in.Type != "" {
		bill.Type = in.Type
	}
	if in.PaymentMethod != "" {
		bill.PaymentMethod = in.PaymentMethod
	}
	bill.Items = items
	bill.Discount = discount
	applyIdentity(&bill, in)
	bill.Recompute()
	if bill.Discount > bill.TotalAmount+domain.Tolerance {
		return domain.Bill{}, fieldError("BillInput.Discount", "lte_total")
	}

	if err := l.bills.Put(ctx, bill); err != nil {
		return domain.Bill{}, fmt.Errorf("save bill %s: %w", bill.ID, err)
	}
	l.log.Info().Str("bill", bill.ID).Float64("total", bill.TotalAmount).Str("status", string(bill.Status)).Msg("bill updated")

	if err := l.evaluate(ctx, bill); err != nil {
		return bill, err
	}
	return bill, nil
}

func (l *Ledger) Get(id string) (domain.Bill, error) {
	bill, ok := l.bills.Get(id)
	if !ok {
		return domain.Bill{}, fmt.Errorf("%w: %s", domain.ErrBillNotFound, id)
	}
	return bill, nil
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	From, To  string
	Status    domain.BillStatus
	PatientID string
	// Search matches the invoice id or walk-in name, case-insensitively.
	Search string
}

// List returns matching bills, newest first.
func (l *Ledger) List(f ListFilter) []domain.Bill {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := l.bills.Filter(func(b domain.Bill) bool {
		if !domain.InRange(b.Date, f.From, f.To) {
			return false
		}
		if f.Status != "" && b.Status != f.Status {
			return false
		}
		if f.PatientID != "" && b.PatientID != f.PatientID {
			return false
		}
		if q != "" && !strings.Contains(strings.ToLower(b.ID), q) && !strings.Contains(strings.ToLower(b.WalkInName), q) {
			return false
		}
		return true
	})
	sortNewestFirst(out)
	return out
}

// Outstanding returns every bill with money still due, newest first.
func (l *Ledger) Outstanding() []domain.Bill {
	out := l.bills.Filter(func(b domain.Bill) bool { return b.DueAmount > 0 })
	sortNewestFirst(out)
	return out
}

func (l *Ledger) check(in BillInput) error {
	if len(in.Items) == 0 {
		return ErrEmptyBasket
	}
	hasPatient := strings.TrimSpace(in.PatientID) != ""
	if hasPatient == (in.WalkIn != nil) {
		return ErrPatientIdentity
	}
	if err := l.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}

func (l *Ledger) buildItems(inputs []ItemInput) ([]domain.BillItem, error) {
	items := make([]domain.BillItem, 0, len(inputs))
	for i, in := range inputs {
		item := domain.BillItem{
			ID:        ids.New(ids.PrefixItem),
			ServiceID: in.ServiceID,
			Name:      in.Name,
			Quantity:  in.Quantity,
		}
		svc, known := domain.ServiceItem{}, false
		if in.ServiceID != "" {
			svc, known = l.services.Get(in.ServiceID)
		}
		switch {
		case in.UnitPrice != nil:
			item.UnitPrice = *in.UnitPrice
		case known:
			item.UnitPrice = svc.Price
		default:
			return nil, fieldError(fmt.Sprintf("BillInput.Items[%d].UnitPrice", i), "required")
		}
		if item.Name == "" && known {
			item.Name = svc.Name
		}
		if item.Name == "" {
			return nil, fieldError(fmt.Sprintf("BillInput.Items[%d].Name", i), "required")
		}
		switch {
		case in.CommissionRate != nil:
			item.CommissionRate = *in.CommissionRate
		case known:
			item.CommissionRate = svc.CommissionRate
		}
		items = append(items, item)
	}
	return items, nil
}

func (l *Ledger) evaluate(ctx context.Context, bill domain.Bill) error {
	if l.commissions == nil {
		return nil
	}
	if _, err := l.commissions.Evaluate(ctx, bill); err != nil {
		return fmt.Errorf("commission for %s: %w", bill.ID, err)
	}
	return nil
}

func applyIdentity(bill *domain.Bill, in BillInput) {
	bill.PatientID = strings.TrimSpace(in.PatientID)
	bill.WalkInName, bill.WalkInAge, bill.WalkInSex, bill.WalkInMobile = "", 0, "", ""
	if in.WalkIn != nil {
		bill.WalkInName = in.WalkIn.Name
		bill.WalkInAge = in.WalkIn.Age
		bill.WalkInSex = in.WalkIn.Sex
		bill.WalkInMobile = in.WalkIn.Mobile
	}
	bill.ReferringProfessionalID = in.ReferringProfessionalID
	bill.ReferringManual = in.ReferringManual
	bill.ConsultingProfessionalID = in.ConsultingProfessionalID
	bill.ConsultingManual = in.ConsultingManual
}

func sortNewestFirst(bills []domain.Bill) {
	sort.SliceStable(bills, func(i, j int) bool { return bills[i].Date > bills[j].Date })
}

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrEmptyBasket) ||
		errors.Is(err, ErrPatientIdentity) ||
		errors.Is(err, ErrDiscountDecrease) ||
		errors.Is(err, ErrDuplicateInvoice) ||
		errors.Is(err, domain.ErrOverpayment)
}
