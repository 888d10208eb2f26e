package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with injectable failures, so tests can
// observe the documented divergence between list and backend.
type fakeStore struct {
	items []Item
	next  int

	loadErr   error
	createErr error
	updateErr error
	deleteErr error
	clearErr  error
}

func (f *fakeStore) Load(ctx context.Context) ([]Item, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return append([]Item(nil), f.items...), nil
}

func (f *fakeStore) Create(ctx context.Context, it Item) (Item, error) {
	if f.createErr != nil {
		return Item{}, f.createErr
	}
	f.next++
	it.ID = fmt.Sprintf("r%d", f.next)
	it.CreatedAt = time.Now()
	f.items = append([]Item{it}, f.items...)
	return it, nil
}

func (f *fakeStore) Update(ctx context.Context, id string, p Patch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			applyPatch(&f.items[i], p)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeStore) DeleteCompleted(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	kept := f.items[:0]
	for _, it := range f.items {
		if !it.Completed {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func newTestService(st Store) *Service {
	s := NewService(st, zerolog.Nop())
	s.Load(context.Background())
	return s
}

func TestServiceAddPrependsAtHead(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "Buy milk", Priority: PriorityMedium})
	s.Add(ctx, AddInput{Text: "Write report", Priority: PriorityHigh})

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Write report", items[0].Text)
	assert.Equal(t, "Buy milk", items[1].Text)

	// added second, so head: default order and priority order agree here
	assert.Equal(t, []string{"Write report", "Buy milk"}, texts(Project(items, Query{}, SortDefault)))
	assert.Equal(t, []string{"Write report", "Buy milk"}, texts(Project(items, Query{}, SortPriority)))
}

func TestServiceAddRejectsBlankText(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: ""})
	s.Add(ctx, AddInput{Text: "   "})

	assert.Empty(t, s.Items())
}

func TestServiceAddNormalizes(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{
		Text:     "  trim me  ",
		Priority: Priority("urgent-ish"),
		Tags:     []string{"a", "a", " ", "b"},
		Category: CategoryAll,
	})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "trim me", items[0].Text)
	assert.Equal(t, DefaultPriority, items[0].Priority)
	assert.Equal(t, []string{"a", "b"}, []string(items[0].Tags))
	assert.Equal(t, CategoryNone, items[0].Category)
}

func TestServiceAddFailedRemoteCreateAddsNothing(t *testing.T) {
	st := &fakeStore{createErr: fmt.Errorf("backend down")}
	s := newTestService(st)

	s.Add(context.Background(), AddInput{Text: "lost"})

	assert.Empty(t, s.Items())
	assert.Empty(t, st.items)
}

func TestServiceToggleTwiceRestoresRecord(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "task", Priority: PriorityHigh, Tags: []string{"x"}, Category: "work"})
	before := s.Items()[0]

	s.Toggle(ctx, before.ID)
	assert.True(t, s.Items()[0].Completed)

	s.Toggle(ctx, before.ID)
	assert.Equal(t, before, s.Items()[0])
}

func TestServiceToggleUnknownIDIsNoop(t *testing.T) {
	s := newTestService(&fakeStore{})
	s.Add(context.Background(), AddInput{Text: "task"})
	before := s.Items()

	s.Toggle(context.Background(), "nope")
	assert.Equal(t, before, s.Items())
}

func TestServiceEdit(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "old"})
	id := s.Items()[0].ID

	s.Edit(ctx, id, "  new  ")
	assert.Equal(t, "new", s.Items()[0].Text)

	s.Edit(ctx, id, "   ")
	assert.Equal(t, "new", s.Items()[0].Text)
}

func TestServiceSingleFieldMutations(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "task"})
	id := s.Items()[0].ID

	s.Reprioritize(ctx, id, PriorityHigh)
	assert.Equal(t, PriorityHigh, s.Items()[0].Priority)

	s.Reprioritize(ctx, id, Priority("bogus"))
	assert.Equal(t, PriorityHigh, s.Items()[0].Priority)

	s.Retag(ctx, id, []string{"a", "b", "a"})
	assert.Equal(t, []string{"a", "b"}, []string(s.Items()[0].Tags))

	s.Recategorize(ctx, id, "work")
	assert.Equal(t, "work", s.Items()[0].Category)

	s.Recategorize(ctx, id, CategoryAll)
	assert.Equal(t, CategoryNone, s.Items()[0].Category)
}

func TestServiceDeleteIsIdempotent(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "a"})
	s.Add(ctx, AddInput{Text: "b"})
	id := s.Items()[1].ID

	s.Delete(ctx, id)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "b", s.Items()[0].Text)

	s.Delete(ctx, id)
	assert.Len(t, s.Items(), 1)
}

func TestServiceClearCompletedKeepsActiveOrder(t *testing.T) {
	s := newTestService(&fakeStore{})
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d"} {
		s.Add(ctx, AddInput{Text: text})
	}
	items := s.Items() // d, c, b, a
	s.Toggle(ctx, items[1].ID)
	s.Toggle(ctx, items[3].ID)

	s.ClearCompleted(ctx)

	assert.Equal(t, []string{"d", "b"}, texts(s.Items()))
}

func TestServiceOptimisticWriteKeptOnBackendFailure(t *testing.T) {
	st := &fakeStore{}
	s := newTestService(st)
	ctx := context.Background()

	s.Add(ctx, AddInput{Text: "task"})
	id := s.Items()[0].ID

	st.updateErr = fmt.Errorf("backend down")
	s.Toggle(ctx, id)

	// in-memory applied, backend untouched: documented divergence
	assert.True(t, s.Items()[0].Completed)
	assert.False(t, st.items[0].Completed)

	st.deleteErr = fmt.Errorf("backend down")
	s.Delete(ctx, id)
	assert.Empty(t, s.Items())
	assert.Len(t, st.items, 1)
}

func TestServiceLoadFailureDegradesToEmpty(t *testing.T) {
	st := &fakeStore{items: []Item{item("1", "a", false, PriorityLow)}, loadErr: fmt.Errorf("backend down")}
	s := NewService(st, zerolog.Nop())
	s.Load(context.Background())

	assert.Empty(t, s.Items())
}

func TestServiceSetStoreSwapsBackend(t *testing.T) {
	local := &fakeStore{items: []Item{item("l1", "local task", false, PriorityLow)}}
	remote := &fakeStore{items: []Item{item("r1", "remote task", false, PriorityHigh)}}

	s := newTestService(local)
	assert.Equal(t, []string{"local task"}, texts(s.Items()))

	s.SetStore(remote)
	s.Load(context.Background())
	assert.Equal(t, []string{"remote task"}, texts(s.Items()))
}
