package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var ErrNotFound = errors.New("snapshot key not found")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Store is durable keyed blob storage: the server-side counterpart of a
// browser's per-origin key/value storage. One file per key, JSON blobs only
// by convention. Namespaces scope keys to a single client.
type Store struct {
	mu  *sync.RWMutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{mu: &sync.RWMutex{}, dir: dir}, nil
}

// Namespace returns a view of the store scoped to one client. The namespace
// shares the parent's lock; its directory is created on first write.
func (s *Store) Namespace(name string) *Store {
	return &Store{mu: s.mu, dir: filepath.Join(s.dir, sanitize(name))}
}

func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Store) Set(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(key), blob, 0o644)
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, sanitize(key)+".json")
}

func sanitize(name string) string {
	out := unsafeChars.ReplaceAllString(name, "_")
	if out == "" {
		out = "default"
	}
	return out
}
