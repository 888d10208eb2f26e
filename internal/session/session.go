package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"doable/internal/snapshot"
	"doable/internal/task"
)

// Identity is the signed-in user as reported by the auth provider.
type Identity struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// Event is one auth provider notification: the current identity, or nil when
// nobody is signed in.
type Event struct {
	Identity *Identity
}

// Provider is the boundary to the external auth system. Subscribe registers a
// callback for identity changes and returns its teardown; implementations
// deliver the current state to a new subscriber. SignOut requests session
// termination; the resulting anonymous event arrives through the
// subscription, not as a return value.
type Provider interface {
	Subscribe(fn func(Event)) (cancel func())
	SignOut()
}

type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateIdentified
)

// profileKey holds the cached signed-in profile blob, removed on sign-out.
const profileKey = "user"

type profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture"`
	IsLoggedIn bool   `json:"isLoggedIn"`
}

// Backends supplies the two persistence capabilities a session can select.
type Backends struct {
	Local  func() task.Store
	Remote func(ownerID string) task.Store
}

// Session ties one client's task engine to the identity event stream and
// owns the choice of persistence backend. On sign-in the anonymous snapshot
// is discarded (never merged) and the engine reloads from the owner's remote
// store; on sign-out the cached profile is dropped and the engine reloads
// whatever the local snapshot holds.
type Session struct {
	engine   *task.Service
	snaps    *snapshot.Store
	backends Backends
	provider Provider
	log      zerolog.Logger

	mu       sync.Mutex
	state    State
	identity *Identity
	cancel   func()
}

func New(engine *task.Service, snaps *snapshot.Store, backends Backends, provider Provider, log zerolog.Logger) *Session {
	s := &Session{
		engine:   engine,
		snaps:    snaps,
		backends: backends,
		provider: provider,
		log:      log,
		state:    StateUnknown,
	}
	s.cancel = provider.Subscribe(s.onEvent)
	return s
}

func (s *Session) onEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	if ev.Identity != nil {
		s.state = StateIdentified
		s.identity = ev.Identity

		// Anonymous state is discarded on sign-in, not merged.
		if err := s.snaps.Remove(task.SnapshotKey); err != nil {
			s.log.Warn().Err(err).Msg("clear anonymous snapshot")
		}
		s.cacheProfile(ev.Identity)
		s.engine.SetStore(s.backends.Remote(ev.Identity.ID))
	} else {
		s.state = StateAnonymous
		s.identity = nil

		if err := s.snaps.Remove(profileKey); err != nil {
			s.log.Warn().Err(err).Msg("clear cached profile")
		}
		s.engine.SetStore(s.backends.Local())
	}
	s.engine.Load(ctx)
}

func (s *Session) cacheProfile(id *Identity) {
	blob, err := json.Marshal(profile{
		ID:         id.ID,
		Name:       id.Name,
		Email:      id.Email,
		Picture:    id.Picture,
		IsLoggedIn: true,
	})
	if err == nil {
		err = s.snaps.Set(profileKey, blob)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("cache profile")
	}
}

// Engine returns the session's task engine.
func (s *Session) Engine() *task.Service { return s.engine }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the current identity, or nil when anonymous.
func (s *Session) Identity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// Logout asks the provider to terminate the signed-in session. The anonymous
// transition is delivered through the event stream.
func (s *Session) Logout() {
	s.provider.SignOut()
}

// Close tears down the provider subscription.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
