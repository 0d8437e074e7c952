package domain

import (
	"errors"
	"fmt"
)

// EntityType names a record collection. The value doubles as the remote route
// name and the suffix of the local cache key.
type EntityType string

const (
	EntityUsers         EntityType = "users"
	EntityPatients      EntityType = "patients"
	EntityProfessionals EntityType = "professionals"
	EntityBills         EntityType = "bills"
	EntityServices      EntityType = "services"
	EntityCategories    EntityType = "categories"
	EntityAdmissions    EntityType = "admissions"
	EntityRooms         EntityType = "rooms"
	EntityExpenses      EntityType = "expenses"
	EntityCommissions   EntityType = "commissions"
	EntityTrash         EntityType = "trash"
)

// Entities lists every collection the record store knows about.
var Entities = []EntityType{
	EntityUsers, EntityPatients, EntityProfessionals, EntityBills, EntityServices,
	EntityCategories, EntityAdmissions, EntityRooms, EntityExpenses, EntityCommissions,
	EntityTrash,
}

// trashKinds maps the collections that can be soft-deleted to the label stored
// in TrashItem.Type.
var trashKinds = map[EntityType]string{
	EntityBills:         "Bill",
	EntityPatients:      "Patient",
	EntityServices:      "Service",
	EntityUsers:         "User",
	EntityAdmissions:    "Admission",
	EntityRooms:         "Room",
	EntityProfessionals: "Professional",
}

// ErrUnknownEntity is returned when a route or trash kind does not name a known collection.
var ErrUnknownEntity = errors.New("unknown entity type")

// ParseEntity validates a route name.
func ParseEntity(route string) (EntityType, error) {
	for _, e := range Entities {
		if string(e) == route {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntity, route)
}

// Kind returns the trash label for the collection, or "" when it cannot be trashed.
func (e EntityType) Kind() string { return trashKinds[e] }

// EntityForKind resolves a trash label back to its collection.
func EntityForKind(kind string) (EntityType, error) {
	for e, k := range trashKinds {
		if k == kind {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: kind %q", ErrUnknownEntity, kind)
}

// Record is implemented by every persisted type.
type Record interface {
	RecordID() string
}

// Named records describe themselves for the recycle bin.
type Named interface {
	DisplayName() string
}
