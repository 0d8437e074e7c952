package domain

// ServiceItem is a priced entry of the service catalog.
type ServiceItem struct {
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	CommissionRate float64 `json:"commissionRate,omitempty"`
}

func (s ServiceItem) RecordID() string    { return s.ID }
func (s ServiceItem) DisplayName() string { return s.Name }

type ServiceCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c ServiceCategory) RecordID() string { return c.ID }
