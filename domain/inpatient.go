package domain

type Room struct {
	ID          string  `json:"id"`
	Number      string  `json:"number"`
	Type        string  `json:"type"`
	PricePerDay float64 `json:"pricePerDay"`
	Floor       string  `json:"floor"`
	Status      string  `json:"status"`
}

func (r Room) RecordID() string    { return r.ID }
func (r Room) DisplayName() string { return "Room " + r.Number }

type Admission struct {
	ID                 string `json:"id"`
	PatientID          string `json:"patientId"`
	AdmissionDate      string `json:"admissionDate"`
	DischargeDate      string `json:"dischargeDate,omitempty"`
	RoomNumber         string `json:"roomNumber"`
	BedNumber          string `json:"bedNumber"`
	DoctorInChargeID   string `json:"doctorInChargeId"`
	Status             string `json:"status"`
	Notes              string `json:"notes,omitempty"`
	GuardianName       string `json:"guardianName,omitempty"`
	GuardianPhone      string `json:"guardianPhone,omitempty"`
	GuardianRelation   string `json:"guardianRelation,omitempty"`
	BloodGroup         string `json:"bloodGroup,omitempty"`
	AdmissionDiagnosis string `json:"admissionDiagnosis,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
}

func (a Admission) RecordID() string    { return a.ID }
func (a Admission) DisplayName() string { return "Stay: " + a.PatientID }

type Expense struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	RecordedBy  string  `json:"recordedBy"`
}

func (e Expense) RecordID() string { return e.ID }
