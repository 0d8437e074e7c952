package domain

type Patient struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	Mobile         string   `json:"mobile"`
	Address        string   `json:"address,omitempty"`
	RegDate        string   `json:"regDate"`
	History        []string `json:"history"`
	FollowUpDate   string   `json:"followUpDate,omitempty"`
	FollowUpReason string   `json:"followUpReason,omitempty"`
}

func (p Patient) RecordID() string    { return p.ID }
func (p Patient) DisplayName() string { return p.Name }
