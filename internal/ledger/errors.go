package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyBasket is returned before any state changes when a bill has no line items.
	ErrEmptyBasket = errors.New("bill has no line items")

	// ErrDuplicateInvoice signals an invoice number collision. It usually
	// points at a numbering misconfiguration rather than a transient failure.
	ErrDuplicateInvoice = errors.New("duplicate invoice id")

	// ErrPatientIdentity is returned unless exactly one of patient id or
	// walk-in details is given.
	ErrPatientIdentity = errors.New("bill needs either a patient id or walk-in details")

	// ErrDiscountDecrease is returned when an update would lower the cumulative waiver.
	ErrDiscountDecrease = errors.New("discount cannot decrease")
)

type DuplicateInvoiceError struct {
	ID string
}

func (e *DuplicateInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s already exists", e.ID)
}

func (e *DuplicateInvoiceError) Is(target error) bool { return target == ErrDuplicateInvoice }

// ValidationError lists the input fields that failed their rules.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid bill input: " + strings.Join(parts, ", ")
}

func fieldError(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

func fromValidator(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		out.Fields[fe.Namespace()] = fe.Tag()
	}
	return out
}
