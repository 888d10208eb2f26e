package task

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"doable/internal/snapshot"
)

// SnapshotKey is the fixed key the anonymous task list lives under.
const SnapshotKey = "anonymous_todos"

// LocalStore keeps the anonymous list as one JSON blob in a client's snapshot
// namespace. Every mutation rewrites the whole blob; there is no incremental
// update. Record ids are millisecond timestamps, bumped on collision.
type LocalStore struct {
	snaps *snapshot.Store
	log   zerolog.Logger

	mu    sync.Mutex
	items []Item
}

func NewLocalStore(snaps *snapshot.Store, log zerolog.Logger) *LocalStore {
	return &LocalStore{snaps: snaps, log: log}
}

// Load reads the snapshot blob. A missing key is an empty list; a corrupt
// blob is logged and also treated as an empty list, never as a failure.
func (l *LocalStore) Load(ctx context.Context) ([]Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	blob, err := l.snaps.Get(SnapshotKey)
	if err != nil {
		if err != snapshot.ErrNotFound {
			l.log.Warn().Err(err).Msg("read task snapshot")
		}
		l.items = nil
		return []Item{}, nil
	}

	var items []Item
	if err := json.Unmarshal(blob, &items); err != nil {
		l.log.Warn().Err(err).Msg("corrupt task snapshot, starting empty")
		l.items = nil
		return []Item{}, nil
	}
	for i := range items {
		normalizeItem(&items[i])
	}
	l.items = items
	return append([]Item(nil), items...), nil
}

func (l *LocalStore) Create(ctx context.Context, it Item) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	it.ID = l.nextID()
	it.OwnerID = ""
	it.CreatedAt = time.Now()
	normalizeItem(&it)

	l.items = append([]Item{it}, l.items...)
	return it, l.flush()
}

func (l *LocalStore) Update(ctx context.Context, id string, p Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].ID == id {
			applyPatch(&l.items[i], p)
			normalizeItem(&l.items[i])
			return l.flush()
		}
	}
	return ErrNotFound
}

func (l *LocalStore) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0]
	removed := false
	for _, it := range l.items {
		if it.ID == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	if !removed {
		return nil
	}
	return l.flush()
}

func (l *LocalStore) DeleteCompleted(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.items[:0]
	for _, it := range l.items {
		if !it.Completed {
			kept = append(kept, it)
		}
	}
	l.items = kept
	return l.flush()
}

func (l *LocalStore) flush() error {
	items := l.items
	if items == nil {
		items = []Item{}
	}
	blob, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return l.snaps.Set(SnapshotKey, blob)
}

// nextID derives an id from the current millisecond, bumping past ids already
// present so that two adds within the same millisecond stay distinct.
func (l *LocalStore) nextID() string {
	ms := time.Now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if !l.hasID(id) {
			return id
		}
		ms++
	}
}

func (l *LocalStore) hasID(id string) bool {
	for _, it := range l.items {
		if it.ID == id {
			return true
		}
	}
	return false
}
