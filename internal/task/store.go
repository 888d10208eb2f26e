package task

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("task not found")

// Patch is a partial update. nil pointer => "no change".
type Patch struct {
	Text      *string   `json:"text,omitempty"`
	Completed *bool     `json:"completed,omitempty"`
	Priority  *Priority `json:"priority,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Category  *string   `json:"category,omitempty"`
}

// Store is the persistence capability behind the canonical list. A session
// selects exactly one implementation per identity transition: RemoteStore for
// a signed-in owner, LocalStore for anonymous use. Mutation handlers call one
// Store method instead of branching on identity.
type Store interface {
	// Load returns the full list, newest first.
	Load(ctx context.Context) ([]Item, error)
	// Create persists a new record and returns it with the authoritative
	// id and creation timestamp filled in.
	Create(ctx context.Context, it Item) (Item, error)
	// Update applies a partial field update keyed by id.
	Update(ctx context.Context, id string, p Patch) error
	// Delete removes by id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// DeleteCompleted removes every completed record. This is a bulk
	// query-then-delete-each operation, not an atomic transaction.
	DeleteCompleted(ctx context.Context) error
}

func applyPatch(it *Item, p Patch) {
	if p.Text != nil {
		it.Text = *p.Text
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if p.Tags != nil {
		if *p.Tags == nil {
			it.Tags = []string{}
		} else {
			it.Tags = *p.Tags
		}
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
}
