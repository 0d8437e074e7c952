package domain

import "encoding/json"

// TrashItem archives a removed record until it is restored or purged.
type TrashItem struct {
	ID         string          `json:"id"`
	OriginalID string          `json:"originalId"`
	Type       string          `json:"type"`
	Name       string          `json:"name"`
	Data       json.RawMessage `json:"data"`
	DeletedAt  string          `json:"deletedAt"`
}

func (t TrashItem) RecordID() string { return t.ID }
