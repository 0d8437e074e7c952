package ledger

import (
	"time"

	"github.com/go-playground/validator/v10"

	"medcore/m/domain"
)

type ItemInput struct {
	ServiceID string  `json:"serviceId"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"qty" validate:"gt=0"`
	// UnitPrice falls back to the catalog price when nil.
	UnitPrice      *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	CommissionRate *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type WalkIn struct {
	Name   string `json:"name" validate:"required"`
	Age    int    `json:"age" validate:"gte=0,lte=150"`
	Sex    string `json:"sex" validate:"omitempty,oneof=Male Female Other"`
	Mobile string `json:"mobile"`
}

// BillInput carries everything a cashier enters for a bill.
type BillInput struct {
	// ID overrides the generated invoice number.
	ID                       string             `json:"id"`
	Type                     domain.InvoiceType `json:"type" validate:"omitempty,invoice_type"`
	PatientID                string             `json:"patientId"`
	WalkIn                   *WalkIn            `json:"walkIn"`
	ReferringProfessionalID  string             `json:"referringDoctorId"`
	ReferringManual          string             `json:"referringDoctorManual"`
	ConsultingProfessionalID string             `json:"consultantDoctorId"`
	ConsultingManual         string             `json:"consultantDoctorManual"`
	Items                    []ItemInput        `json:"items" validate:"dive"`
	Discount                 float64            `json:"discount" validate:"gte=0"`
	// InitialPayment is only read on creation.
	InitialPayment float64              `json:"initialPayment" validate:"gte=0"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod" validate:"omitempty,payment_method"`
	AuthorUsername string               `json:"authorUsername"`
	AuthorName     string               `json:"authorName"`
	// Date defaults to the ledger clock.
	Date time.Time `json:"date"`
}

var invoiceTypes = map[domain.InvoiceType]bool{
	domain.InvoiceGeneral:   true,
	domain.InvoiceOPD:       true,
	domain.InvoicePathology: true,
	domain.InvoicePharmacy:  true,
	domain.InvoiceEmergency: true,
	domain.InvoiceSurgery:   true,
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return domain.PaymentMethod(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("invoice_type", func(fl validator.FieldLevel) bool {
		return invoiceTypes[domain.InvoiceType(fl.Field().String())]
	})
	return v
}
