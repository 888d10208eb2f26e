package task

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Priority of a task. Stored as text.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is what Add uses when the caller supplies none.
// FallbackPriority is what a stored record missing a priority decodes to.
// The two differ on purpose; do not unify them.
const (
	DefaultPriority  = PriorityMedium
	FallbackPriority = PriorityLow
)

const (
	// CategoryAll is the catch-all filter sentinel meaning "no restriction".
	CategoryAll = "all"
	// CategoryNone is what a task stores when it has no real category.
	CategoryNone = "uncategorized"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

func (p Priority) rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[FallbackPriority]
}

// Item is one task record. The same shape is stored as a Postgres row for
// signed-in owners and as part of a JSON snapshot blob for anonymous clients.
type Item struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	OwnerID   string         `gorm:"index;not null;default:''" json:"ownerId,omitempty"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	Completed bool           `gorm:"not null;default:false" json:"completed"`
	Priority  Priority       `gorm:"type:text;not null;default:'medium'" json:"priority"`
	Tags      pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Category  string         `gorm:"type:text;not null;default:'uncategorized'" json:"category"`
	CreatedAt time.Time      `gorm:"index;not null;default:now()" json:"createdAt"`
}

func (Item) TableName() string { return "todos" }

// NormalizeCategory maps absent values and the catch-all sentinel to CategoryNone.
func NormalizeCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" || c == CategoryAll {
		return CategoryNone
	}
	return c
}

// NormalizeTags trims, drops empties and deduplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func normalizeItem(it *Item) {
	if !it.Priority.Valid() {
		it.Priority = FallbackPriority
	}
	it.Category = NormalizeCategory(it.Category)
	it.Tags = NormalizeTags(it.Tags)
}
