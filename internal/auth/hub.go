package auth

import (
	"sync"

	"doable/internal/session"
)

// Hub fans auth state changes out to per-client subscribers. It is the
// explicit event-stream form of an ambient "on auth state changed" listener:
// login and logout announce transitions, sessions subscribe to them.
//
// A new subscriber immediately receives the client's current state (anonymous
// until something else was announced), so a session never stays in the
// unknown state past Subscribe.
type Hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func(session.Event)
	last map[string]session.Event
}

func NewHub() *Hub {
	return &Hub{
		subs: map[string]map[int]func(session.Event){},
		last: map[string]session.Event{},
	}
}

// Announce delivers an identity transition to the client's subscribers.
func (h *Hub) Announce(clientID string, ev session.Event) {
	h.mu.Lock()
	h.last[clientID] = ev
	fns := make([]func(session.Event), 0, len(h.subs[clientID]))
	for _, fn := range h.subs[clientID] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// ForClient returns the provider view one client's session subscribes to.
func (h *Hub) ForClient(clientID string) session.Provider {
	return &clientProvider{hub: h, clientID: clientID}
}

func (h *Hub) subscribe(clientID string, fn func(session.Event)) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[clientID] == nil {
		h.subs[clientID] = map[int]func(session.Event){}
	}
	h.subs[clientID][id] = fn
	current, ok := h.last[clientID]
	h.mu.Unlock()

	if !ok {
		current = session.Event{}
	}
	fn(current)

	return func() {
		h.mu.Lock()
		delete(h.subs[clientID], id)
		h.mu.Unlock()
	}
}

type clientProvider struct {
	hub      *Hub
	clientID string
}

func (p *clientProvider) Subscribe(fn func(session.Event)) (cancel func()) {
	return p.hub.subscribe(p.clientID, fn)
}

func (p *clientProvider) SignOut() {
	p.hub.Announce(p.clientID, session.Event{})
}
