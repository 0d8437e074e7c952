// Package ids mints identifiers for records that are not numbered invoices.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// New returns PREFIX-<uuid>. An empty prefix yields the bare uuid.
func New(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return strings.ToUpper(prefix) + "-" + id
}

// Prefixes used by the ledger components.
const (
	PrefixTrash        = "TRASH"
	PrefixCommission   = "C"
	PrefixPayment      = "PAY"
	PrefixPatient      = "P"
	PrefixProfessional = "PRO"
	PrefixItem         = "ITEM"
	PrefixExpense      = "EX"
)
