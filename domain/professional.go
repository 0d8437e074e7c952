package domain

type Professional struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Degree            string  `json:"degree"`
	Category          string  `json:"category"`
	OutType           string  `json:"outType,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	CommissionEnabled bool    `json:"commissionEnabled"`
	CommissionRate    float64 `json:"commissionRate"`
}

func (p Professional) RecordID() string    { return p.ID }
func (p Professional) DisplayName() string { return p.Name }
