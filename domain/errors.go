package domain

import "errors"

var (
	ErrBillNotFound = errors.New("bill not found")

	// ErrOverpayment means a payment plus waiver would exceed the amount due.
	ErrOverpayment = errors.New("payment exceeds amount due")

	// ErrInvalidPayment covers negative amounts and no-op payments.
	ErrInvalidPayment = errors.New("invalid payment")
)
