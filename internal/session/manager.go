package session

import (
	"sync"

	"github.com/rs/zerolog"

	"doable/internal/snapshot"
	"doable/internal/task"
)

// ProviderHub hands out a per-client view of the auth event stream.
type ProviderHub interface {
	ForClient(clientID string) Provider
}

// Manager owns one session per client id. Each client gets its own snapshot
// namespace (the per-browser storage analog), its own engine, and its own
// subscription to the auth stream.
type Manager struct {
	snaps  *snapshot.Store
	hub    ProviderHub
	remote func(ownerID string) task.Store
	log    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(snaps *snapshot.Store, hub ProviderHub, remote func(ownerID string) task.Store, log zerolog.Logger) *Manager {
	return &Manager{
		snaps:    snaps,
		hub:      hub,
		remote:   remote,
		log:      log,
		sessions: map[string]*Session{},
	}
}

// Get returns the client's session, creating it on first use. A new session
// receives the provider's current auth state immediately, so its engine is
// loaded before Get returns.
func (m *Manager) Get(clientID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[clientID]; ok {
		return s
	}

	ns := m.snaps.Namespace(clientID)
	log := m.log.With().Str("client", clientID).Logger()
	engine := task.NewService(nil, log)
	backends := Backends{
		Local:  func() task.Store { return task.NewLocalStore(ns, log) },
		Remote: m.remote,
	}
	s := New(engine, ns, backends, m.hub.ForClient(clientID), log)
	m.sessions[clientID] = s
	return s
}

// Close tears down every session's subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.Close()
	}
	m.sessions = map[string]*Session{}
}
