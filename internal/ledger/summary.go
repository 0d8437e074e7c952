package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"medcore/m/domain"
	"medcore/m/internal/ids"
)

type ExpenseInput struct {
	Description string  `json:"description" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Category    string  `json:"category"`
	// Date is a YYYY-MM-DD day and defaults to today.
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	RecordedBy string `json:"recordedBy"`
}

// AddExpense records money paid out of the counter.
func (l *Ledger) AddExpense(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	in.Description = strings.TrimSpace(in.Description)
	if err := l.validate.Struct(in); err != nil {
		return domain.Expense{}, fromValidator(err)
	}
	e := domain.Expense{
		ID:          ids.New(ids.PrefixExpense),
		Description: in.Description,
		Amount:      domain.Round2(in.Amount),
		Category:    in.Category,
		Date:        in.Date,
		RecordedBy:  in.RecordedBy,
	}
	if e.Category == "" {
		e.Category = "General"
	}
	if e.Date == "" {
		e.Date = domain.DateKey(domain.Timestamp(l.now()))
	}
	if err := l.expenses.Put(ctx, e); err != nil {
		return domain.Expense{}, fmt.Errorf("save expense %s: %w", e.ID, err)
	}
	l.log.Info().Str("expense", e.ID).Float64("amount", e.Amount).Msg("expense recorded")
	return e, nil
}

// Expenses returns expenses dated within [from, to], newest first.
func (l *Ledger) Expenses(from, to string) []domain.Expense {
	out := l.expenses.Filter(func(e domain.Expense) bool { return domain.InRange(e.Date, from, to) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

type ItemCount struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"qty"`
}

// Summary is the cash position of a date range.
type Summary struct {
	From string `json:"from"`
	To   string `json:"to"`
	// AdvanceCollection is money taken on bills created in the range.
	AdvanceCollection float64 `json:"advanceCollection"`
	// DueCollection is money taken in the range on older bills.
	DueCollection   float64     `json:"dueCollection"`
	TotalCollection float64     `json:"totalCollection"`
	Receivables     float64     `json:"receivables"`
	Expenses        float64     `json:"expenses"`
	CashBalance     float64     `json:"cashBalance"`
	Bills           int         `json:"bills"`
	Items           []ItemCount `json:"items"`
}

// Summary reports collections and expenses for [from, to]. An empty from means
// today and an empty to means the same day as from.
func (l *Ledger) Summary(from, to string) (Summary, error) {
	if from == "" {
		from = domain.DateKey(domain.Timestamp(l.now()))
	}
	if to == "" {
		to = from
	}
	if to < from {
		return Summary{}, fieldError("Summary.To", "gtefield=From")
	}
	return Summarize(l.bills.All(), l.expenses.All(), from, to), nil
}

// Summarize splits payments by the day they were taken. Bills without a
// payment history count their paid amount as collected on the bill day.
func Summarize(bills []domain.Bill, expenses []domain.Expense, from, to string) Summary {
	s := Summary{From: from, To: to, Items: []ItemCount{}}
	counts := make(map[string]float64)

	for _, b := range bills {
		var taken float64
		for _, p := range b.Payments {
			if domain.InRange(p.Date, from, to) {
				taken += p.Amount
			}
		}
		if !domain.InRange(b.Date, from, to) {
			s.DueCollection += taken
			continue
		}
		s.Bills++
		s.AdvanceCollection += taken
		if len(b.Payments) == 0 {
			s.AdvanceCollection += b.PaidAmount
		}
		s.Receivables += b.DueAmount
		for _, it := range b.Items {
			counts[it.Name] += it.Quantity
		}
	}
	for _, e := range expenses {
		if domain.InRange(e.Date, from, to) {
			s.Expenses += e.Amount
		}
	}

	s.AdvanceCollection = domain.Round2(s.AdvanceCollection)
	s.DueCollection = domain.Round2(s.DueCollection)
	s.TotalCollection = domain.Round2(s.AdvanceCollection + s.DueCollection)
	s.Receivables = domain.Round2(s.Receivables)
	s.Expenses = domain.Round2(s.Expenses)
	s.CashBalance = domain.Round2(s.TotalCollection - s.Expenses)

	for name, qty := range counts {
		s.Items = append(s.Items, ItemCount{Name: name, Quantity: qty})
	}
	sort.Slice(s.Items, func(i, j int) bool {
		if s.Items[i].Quantity != s.Items[j].Quantity {
			return s.Items[i].Quantity > s.Items[j].Quantity
		}
		return s.Items[i].Name < s.Items[j].Name
	})
	return s
}
