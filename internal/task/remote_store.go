package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

func toStringArray(tags []string) pq.StringArray {
	if tags == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(tags)
}

// RemoteStore keeps one owner's tasks in the shared "todos" collection.
// Every query and mutation is scoped to that owner.
type RemoteStore struct {
	db      *gorm.DB
	ownerID string
}

func NewRemoteStore(db *gorm.DB, ownerID string) *RemoteStore {
	return &RemoteStore{db: db, ownerID: ownerID}
}

func (r *RemoteStore) Load(ctx context.Context) ([]Item, error) {
	var items []Item
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", r.ownerID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	for i := range items {
		normalizeItem(&items[i])
	}
	return items, nil
}

// Create assigns the authoritative id and creation timestamp.
func (r *RemoteStore) Create(ctx context.Context, it Item) (Item, error) {
	it.ID = uuid.NewString()
	it.OwnerID = r.ownerID
	it.CreatedAt = time.Now()
	normalizeItem(&it)

	if err := r.db.WithContext(ctx).Create(&it).Error; err != nil {
		return Item{}, err
	}
	return it, nil
}

func (r *RemoteStore) Update(ctx context.Context, id string, p Patch) error {
	fields := map[string]any{}
	if p.Text != nil {
		fields["text"] = *p.Text
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.Tags != nil {
		fields["tags"] = toStringArray(*p.Tags)
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if len(fields) == 0 {
		return nil
	}

	tx := r.db.WithContext(ctx).Model(&Item{}).
		Where("id = ? AND owner_id = ?", id, r.ownerID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RemoteStore) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, r.ownerID).
		Delete(&Item{}).Error
}

// DeleteCompleted queries the owner's completed records and deletes each one
// individually. There is no surrounding transaction; a failure partway through
// leaves the rest in place.
func (r *RemoteStore) DeleteCompleted(ctx context.Context) error {
	var ids []string
	err := r.db.WithContext(ctx).Model(&Item{}).
		Where("owner_id = ? AND completed = ?", r.ownerID, true).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}

	var firstErr error
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
