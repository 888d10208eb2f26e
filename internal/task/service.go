package task

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Service owns the canonical in-memory task list for one client session and
// mediates every mutation through the active Store. The list is the source of
// truth for rendering; the backend is written on every mutation but the list
// is only re-derived from it on Load.
//
// Writes are optimistic and unconfirmed: apart from Add, a mutation is applied
// in memory first and the backend write is best-effort. A failed write is
// logged and never rolled back, so the list and the backend can silently
// diverge. That is policy, not accident.
type Service struct {
	mu    sync.Mutex
	store Store
	items []Item
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log}
}

// SetStore swaps the persistence backend. The session calls this on every
// identity transition, followed by Load.
func (s *Service) SetStore(st Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = st
}

// Load replaces the canonical list from the active backend. A failed load
// degrades to an empty list.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load tasks, starting empty")
		items = nil
	}
	if items == nil {
		items = []Item{}
	}
	s.items = items
}

// Items returns a copy of the canonical list.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

type AddInput struct {
	Text     string
	Priority Priority
	Tags     []string
	Category string
}

// Add creates a task at the head of the list. Empty-after-trim text is a
// silent no-op. Add is the one mutation that is not optimistic: the store
// assigns the authoritative id, so a failed create adds nothing.
func (s *Service) Add(ctx context.Context, in AddInput) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return
	}

	prio := in.Priority
	if !prio.Valid() {
		prio = DefaultPriority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.Create(ctx, Item{
		Text:      text,
		Completed: false,
		Priority:  prio,
		Tags:      toStringArray(NormalizeTags(in.Tags)),
		Category:  NormalizeCategory(in.Category),
	})
	if err != nil {
		s.log.Error().Err(err).Str("op", "add").Msg("backend write failed")
	}
	if rec.ID == "" {
		return
	}
	s.items = append([]Item{rec}, s.items...)
}

// Toggle flips the completed flag. Unknown id is a no-op.
func (s *Service) Toggle(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items[i].Completed = !s.items[i].Completed

	completed := s.items[i].Completed
	s.persist(ctx, "toggle", id, Patch{Completed: &completed})
}

// Edit replaces the text. Empty-after-trim text or an unknown id is a no-op.
func (s *Service) Edit(ctx context.Context, id, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items[i].Text = text
	s.persist(ctx, "edit", id, Patch{Text: &text})
}

// Reprioritize sets the priority. An invalid priority or unknown id is a no-op.
func (s *Service) Reprioritize(ctx context.Context, id string, p Priority) {
	if !p.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items[i].Priority = p
	s.persist(ctx, "reprioritize", id, Patch{Priority: &p})
}

// Retag replaces the tag set, deduplicated.
func (s *Service) Retag(ctx context.Context, id string, tags []string) {
	tags = NormalizeTags(tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items[i].Tags = toStringArray(tags)
	s.persist(ctx, "retag", id, Patch{Tags: &tags})
}

// Recategorize sets the category, normalizing the catch-all sentinel away.
func (s *Service) Recategorize(ctx context.Context, id, category string) {
	category = NormalizeCategory(category)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items[i].Category = category
	s.persist(ctx, "recategorize", id, Patch{Category: &category})
}

// Delete removes the task with the given id. Idempotent: deleting an unknown
// id is a no-op, not an error.
func (s *Service) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)

	if err := s.store.Delete(ctx, id); err != nil {
		s.logDiverged("delete", id, err)
	}
}

// ClearCompleted drops every completed task, keeping the relative order of
// the rest.
func (s *Service) ClearCompleted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if !it.Completed {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.items) {
		return
	}
	s.items = kept

	if err := s.store.DeleteCompleted(ctx); err != nil {
		s.logDiverged("clear_completed", "", err)
	}
}

// persist runs the backend side of a mutation already applied in memory.
func (s *Service) persist(ctx context.Context, op, id string, p Patch) {
	if err := s.store.Update(ctx, id, p); err != nil {
		s.logDiverged(op, id, err)
	}
}

func (s *Service) logDiverged(op, id string, err error) {
	s.log.Error().Err(err).Str("op", op).Str("task", id).
		Msg("backend write failed, in-memory state kept")
}

func (s *Service) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
