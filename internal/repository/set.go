package repository

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"medcore/m/domain"
	"medcore/m/internal/remote"
)

// Set holds the repository of every entity type. Build it once and share it.
type Set struct {
	Users         *Collection[domain.User]
	Patients      *Collection[domain.Patient]
	Professionals *Collection[domain.Professional]
	Bills         *Collection[domain.Bill]
	Services      *Collection[domain.ServiceItem]
	Categories    *Collection[domain.ServiceCategory]
	Admissions    *Collection[domain.Admission]
	Rooms         *Collection[domain.Room]
	Expenses      *Collection[domain.Expense]
	Commissions   *Collection[domain.Commission]
	Trash         *Collection[domain.TrashItem]

	raw map[domain.EntityType]Raw
}

func NewSet(adapter *remote.Adapter) *Set {
	s := &Set{
		Users:         NewCollection[domain.User](domain.EntityUsers, adapter),
		Patients:      NewCollection[domain.Patient](domain.EntityPatients, adapter),
		Professionals: NewCollection[domain.Professional](domain.EntityProfessionals, adapter),
		Bills:         NewCollection[domain.Bill](domain.EntityBills, adapter),
		Services:      NewCollection[domain.ServiceItem](domain.EntityServices, adapter),
		Categories:    NewCollection[domain.ServiceCategory](domain.EntityCategories, adapter),
		Admissions:    NewCollection[domain.Admission](domain.EntityAdmissions, adapter),
		Rooms:         NewCollection[domain.Room](domain.EntityRooms, adapter),
		Expenses:      NewCollection[domain.Expense](domain.EntityExpenses, adapter),
		Commissions:   NewCollection[domain.Commission](domain.EntityCommissions, adapter),
		Trash:         NewCollection[domain.TrashItem](domain.EntityTrash, adapter),
	}
	s.raw = map[domain.EntityType]Raw{
		domain.EntityUsers:         s.Users,
		domain.EntityPatients:      s.Patients,
		domain.EntityProfessionals: s.Professionals,
		domain.EntityBills:         s.Bills,
		domain.EntityServices:      s.Services,
		domain.EntityCategories:    s.Categories,
		domain.EntityAdmissions:    s.Admissions,
		domain.EntityRooms:         s.Rooms,
		domain.EntityExpenses:      s.Expenses,
		domain.EntityCommissions:   s.Commissions,
		domain.EntityTrash:         s.Trash,
	}
	return s
}

// Raw returns the type-erased repository for entity.
func (s *Set) Raw(entity domain.EntityType) (Raw, error) {
	r, ok := s.raw[entity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEntity, entity)
	}
	return r, nil
}

// LoadAll refreshes every repository, fetching collections concurrently.
func (s *Set) LoadAll(ctx context.Context, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, e := range domain.Entities {
		repo := s.raw[e]
		g.Go(func() error { return repo.Load(ctx) })
	}
	return g.Wait()
}
