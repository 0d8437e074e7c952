package domain

import "math"

type InvoiceType string

const (
	InvoiceGeneral   InvoiceType = "General"
	InvoiceOPD       InvoiceType = "OPD"
	InvoicePathology InvoiceType = "Pathology"
	InvoicePharmacy  InvoiceType = "Pharmacy"
	InvoiceEmergency InvoiceType = "Emergency"
	InvoiceSurgery   InvoiceType = "Surgery"
)

type PaymentMethod string

const (
	MethodCash          PaymentMethod = "Cash"
	MethodCard          PaymentMethod = "Card"
	MethodMobileBanking PaymentMethod = "Mobile Banking"
	MethodInsurance     PaymentMethod = "Insurance"
	MethodOther         PaymentMethod = "Other"
)

// BillStatus is always derived from the numeric fields, never set directly.
type BillStatus string

const (
	StatusPaid    BillStatus = "paid"
	StatusPartial BillStatus = "partial"
	StatusDue     BillStatus = "due"
)

type BillItem struct {
	ID             string  `json:"id"`
	ServiceID      string  `json:"serviceId"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"qty"`
	UnitPrice      float64 `json:"price"`
	LineTotal      float64 `json:"total"`
	CommissionRate float64 `json:"commissionRate"`
}

// PaymentRecord is immutable once appended to a bill.
type PaymentRecord struct {
	ID     string        `json:"id"`
	Date   string        `json:"date"`
	Amount float64       `json:"amount"`
	Method PaymentMethod `json:"method"`
	Note   string        `json:"note,omitempty"`
}

type Bill struct {
	ID                       string          `json:"id"`
	Type                     InvoiceType     `json:"type"`
	PatientID                string          `json:"patientId,omitempty"`
	WalkInName               string          `json:"walkInName,omitempty"`
	WalkInMobile             string          `json:"walkInMobile,omitempty"`
	WalkInAge                int             `json:"walkInAge,omitempty"`
	WalkInSex                string          `json:"walkInSex,omitempty"`
	ReferringProfessionalID  string          `json:"referringDoctorId,omitempty"`
	ReferringManual          string          `json:"referringDoctorManual,omitempty"`
	ConsultingProfessionalID string          `json:"consultantDoctorId,omitempty"`
	ConsultingManual         string          `json:"consultantDoctorManual,omitempty"`
	Items                    []BillItem      `json:"items"`
	TotalAmount              float64         `json:"totalAmount"`
	Discount                 float64         `json:"discount"`
	TaxAmount                float64         `json:"taxAmount,omitempty"`
	PaidAmount               float64         `json:"paidAmount"`
	DueAmount                float64         `json:"dueAmount"`
	PaymentMethod            PaymentMethod   `json:"paymentMethod,omitempty"`
	Payments                 []PaymentRecord `json:"payments"`
	Date                     string          `json:"date"`
	Status                   BillStatus      `json:"status"`
	AuthorUsername           string          `json:"authorUsername,omitempty"`
	AuthorName               string          `json:"authorName,omitempty"`
}

func (b Bill) RecordID() string    { return b.ID }
func (b Bill) DisplayName() string { return "Invoice: " + b.ID }

// IsWalkIn reports whether the bill identifies its patient by a demographic snapshot.
func (b Bill) IsWalkIn() bool { return b.PatientID == "" }

// NetAmount is the total after waivers.
func (b Bill) NetAmount() float64 { return b.TotalAmount - b.Discount }

// ComputeDue applies max(0, total - discount - paid).
func ComputeDue(total, discount, paid float64) float64 {
	return Round2(math.Max(0, total-discount-paid))
}

// DeriveStatus maps the numeric state of a bill to its status.
func DeriveStatus(due, paid float64) BillStatus {
	switch {
	case due <= 0:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusDue
	}
}

// Recompute refreshes the derived fields from items, discount and paid amount.
func (b *Bill) Recompute() {
	var total float64
	for i := range b.Items {
		b.Items[i].LineTotal = Round2(b.Items[i].Quantity * b.Items[i].UnitPrice)
		total += b.Items[i].LineTotal
	}
	b.TotalAmount = Round2(total)
	b.DueAmount = ComputeDue(b.TotalAmount, b.Discount, b.PaidAmount)
	b.Status = DeriveStatus(b.DueAmount, b.PaidAmount)
}

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{MethodCash, MethodCard, MethodMobileBanking, MethodInsurance, MethodOther}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}
