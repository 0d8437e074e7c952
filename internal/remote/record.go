package remote

import "encoding/json"

// RecordID extracts the id field from a serialized record.
func RecordID(raw json.RawMessage) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", err
	}
	if probe.ID == "" {
		return "", ErrMissingID
	}
	return probe.ID, nil
}

func indexOf(records []json.RawMessage, id string) int {
	for i, raw := range records {
		if rid, err := RecordID(raw); err == nil && rid == id {
			return i
		}
	}
	return -1
}
