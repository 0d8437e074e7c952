package domain

// CommissionBasis records which tier of the fee policy produced an amount.
type CommissionBasis string

const (
	BasisItem CommissionBasis = "Item-Based"
	BasisFlat CommissionBasis = "Flat-Rate"
)

// Commission is derived from a bill; it is never entered by hand.
type Commission struct {
	ID             string          `json:"id"`
	BillID         string          `json:"billId"`
	ProfessionalID string          `json:"staffId"`
	Amount         float64         `json:"amount"`
	Date           string          `json:"date"`
	Type           string          `json:"type"`
	Basis          CommissionBasis `json:"calculationMethod"`
}

func (c Commission) RecordID() string { return c.ID }
