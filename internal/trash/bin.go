// Package trash is the recycle bin. Every delete of a live record goes through
// SoftDelete; the record can then be restored or purged for good.
package trash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medcore/m/domain"
	"medcore/m/internal/ids"
	"medcore/m/internal/repository"
)

var (
	ErrTrashItemNotFound = errors.New("trash item not found")
	ErrRecordNotFound    = errors.New("record not found")
	ErrNotTrashable      = errors.New("entity cannot be moved to trash")
)

// RestoreConflictError means a live record already uses the id being restored.
type RestoreConflictError struct {
	Entity domain.EntityType
	ID     string
}

func (e *RestoreConflictError) Error() string {
	return fmt.Sprintf("cannot restore %s %s: a live record with that id exists", e.Entity, e.ID)
}

// ConflictPolicy decides what Restore does when the original id is taken.
type ConflictPolicy int

const (
	ConflictReject ConflictPolicy = iota
	ConflictOverwrite
	ConflictRename
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch s {
	case "", "reject":
		return ConflictReject, nil
	case "overwrite":
		return ConflictOverwrite, nil
	case "rename":
		return ConflictRename, nil
	}
	return ConflictReject, fmt.Errorf("unknown conflict policy %q", s)
}

type Bin struct {
	repos *repository.Set
	now   func() time.Time
	log   zerolog.Logger
}

func New(repos *repository.Set, clock func() time.Time, log zerolog.Logger) *Bin {
	if clock == nil {
		clock = time.Now
	}
	return &Bin{repos: repos, now: clock, log: log}
}

// SoftDelete archives the record and removes it from its live collection.
// The trash entry is written first so a failure never loses the record.
func (b *Bin) SoftDelete(ctx context.Context, entity domain.EntityType, id string) (domain.TrashItem, error) {
	kind := entity.Kind()
	if kind == "" {
		return domain.TrashItem{}, fmt.Errorf("%w: %s", ErrNotTrashable, entity)
	}
	live, err := b.repos.Raw(entity)
	if err != nil {
		return domain.TrashItem{}, err
	}
	data, name, ok := live.Snapshot(id)
	if !ok {
		return domain.TrashItem{}, fmt.Errorf("%w: %s %s", ErrRecordNotFound, entity, id)
	}

	item := domain.TrashItem{
		ID:         ids.New(ids.PrefixTrash),
		OriginalID: id,
		Type:       kind,
		Name:       name,
		Data:       data,
		DeletedAt:  domain.Timestamp(b.now()),
	}
	if err := b.repos.Trash.Prepend(ctx, item); err != nil {
		return domain.TrashItem{}, err
	}
	if err := live.Delete(ctx, id); err != nil {
		return item, err
	}
	b.log.Info().Str("entity", string(entity)).Str("id", id).Str("trash", item.ID).Msg("moved to trash")
	return item, nil
}

// Restore puts the archived record back and drops the trash entry. It returns
// the id the record now lives under.
func (b *Bin) Restore(ctx context.Context, trashID string, policy ConflictPolicy) (string, error) {
	item, ok := b.repos.Trash.Get(trashID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTrashItemNotFound, trashID)
	}
	entity, err := domain.EntityForKind(item.Type)
	if err != nil {
		return "", err
	}
	live, err := b.repos.Raw(entity)
	if err != nil {
		return "", err
	}

	id, data := item.OriginalID, item.Data
	if live.Has(id) {
		switch policy {
		case ConflictOverwrite:
		case ConflictRename:
			id = freeID(live, item.OriginalID)
			if data, err = withID(data, id); err != nil {
				return "", err
			}
		default:
			return "", &RestoreConflictError{Entity: entity, ID: id}
		}
	}

	if err := live.Insert(ctx, data); err != nil {
		return "", err
	}
	if _, _, err := b.repos.Trash.Remove(ctx, trashID); err != nil {
		return id, err
	}
	b.log.Info().Str("entity", string(entity)).Str("id", id).Str("trash", trashID).Msg("restored from trash")
	return id, nil
}

// Purge discards one trash entry permanently.
func (b *Bin) Purge(ctx context.Context, trashID string) error {
	_, ok, err := b.repos.Trash.Remove(ctx, trashID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrashItemNotFound, trashID)
	}
	b.log.Info().Str("trash", trashID).Msg("purged")
	return nil
}

// EmptyAll purges every trash entry and reports how many were dropped.
func (b *Bin) EmptyAll(ctx context.Context) (int, error) {
	n := b.repos.Trash.Len()
	if n == 0 {
		return 0, nil
	}
	if err := b.repos.Trash.Replace(ctx, nil); err != nil {
		return 0, err
	}
	b.log.Info().Int("count", n).Msg("trash emptied")
	return n, nil
}

// List returns trash entries, most recently deleted first.
func (b *Bin) List() []domain.TrashItem {
	items := b.repos.Trash.All()
	slices.SortStableFunc(items, func(x, y domain.TrashItem) int {
		return strings.Compare(y.DeletedAt, x.DeletedAt)
	})
	return items
}

func (b *Bin) Get(trashID string) (domain.TrashItem, bool) { return b.repos.Trash.Get(trashID) }

func freeID(live repository.Raw, original string) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s-R%d", original, n)
		if !live.Has(candidate) {
			return candidate
		}
	}
}

func withID(data json.RawMessage, id string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode trashed record: %w", err)
	}
	encoded, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	fields["id"] = encoded
	return json.Marshal(fields)
}
