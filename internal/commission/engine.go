// Package commission derives referral fees from bills. A bill has at most one
// commission row per professional and rows are never entered by hand.
package commission

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/ids"
	"medcore/m/internal/repository"
)

// TypeReferral is the only commission type produced today.
const TypeReferral = "Referral"

type Engine struct {
	repos *repository.Set
	log   zerolog.Logger
}

func NewEngine(repos *repository.Set, log zerolog.Logger) *Engine {
	return &Engine{repos: repos, log: log}
}

// Compute applies the fee policy. Line rates take precedence; the flat rate
// of the professional applies to the net amount only when no line earns anything.
func Compute(bill domain.Bill, pro domain.Professional) (float64, domain.CommissionBasis) {
	if !pro.CommissionEnabled {
		return 0, ""
	}
	var itemBasis float64
	for _, item := range bill.Items {
		if item.CommissionRate != 0 {
			itemBasis += item.LineTotal * item.CommissionRate / 100
		}
	}
	if itemBasis != 0 {
		return domain.Round2(itemBasis), domain.BasisItem
	}
	if pro.CommissionRate > 0 {
		return domain.Round2(bill.NetAmount() * pro.CommissionRate / 100), domain.BasisFlat
	}
	return 0, ""
}

// Evaluate replaces every commission row of the bill with the one the
// current bill state earns, if any. Running it twice on an unchanged bill
// leaves exactly the same rows.
func (e *Engine) Evaluate(ctx context.Context, bill domain.Bill) (*domain.Commission, error) {
	var (
		next     *domain.Commission
		previous []domain.Commission
	)
	for _, c := range e.repos.Commissions.All() {
		if c.BillID == bill.ID {
			previous = append(previous, c)
		}
	}

	if bill.ReferringProfessionalID != "" {
		if pro, ok := e.repos.Professionals.Get(bill.ReferringProfessionalID); ok {
			if amount, basis := Compute(bill, pro); amount > 0 {
				next = &domain.Commission{
					ID:             ids.New(ids.PrefixCommission),
					BillID:         bill.ID,
					ProfessionalID: pro.ID,
					Amount:         amount,
					Date:           bill.Date,
					Type:           TypeReferral,
					Basis:          basis,
				}
				for _, c := range previous {
					if c.ProfessionalID == pro.ID {
						next.ID = c.ID
						break
					}
				}
			}
		} else {
			e.log.Debug().Str("bill", bill.ID).Str("professional", bill.ReferringProfessionalID).Msg("referring professional not on file")
		}
	}

	if len(previous) == 0 && next == nil {
		return nil, nil
	}
	if len(previous) == 1 && next != nil && previous[0] == *next {
		return next, nil
	}

	rows := e.repos.Commissions.Filter(func(c domain.Commission) bool { return c.BillID != bill.ID })
	if next != nil {
		rows = append(rows, *next)
	}
	if err := e.repos.Commissions.Replace(ctx, rows); err != nil {
		return nil, fmt.Errorf("save commissions for %s: %w", bill.ID, err)
	}
	return next, nil
}

// ForBill returns the commission row of a bill, if any.
func (e *Engine) ForBill(billID string) (domain.Commission, bool) {
	for _, c := range e.repos.Commissions.All() {
		if c.BillID == billID {
			return c, true
		}
	}
	return domain.Commission{}, false
}
