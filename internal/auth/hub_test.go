package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doable/internal/session"
)

func TestHubDeliversCurrentStateOnSubscribe(t *testing.T) {
	h := NewHub()

	var got []session.Event
	cancel := h.ForClient("c1").Subscribe(func(ev session.Event) {
		got = append(got, ev)
	})
	defer cancel()

	// a fresh client is anonymous
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Identity)
}

func TestHubAnnounceReachesOnlyThatClient(t *testing.T) {
	h := NewHub()

	var c1, c2 []session.Event
	defer h.ForClient("c1").Subscribe(func(ev session.Event) { c1 = append(c1, ev) })()
	defer h.ForClient("c2").Subscribe(func(ev session.Event) { c2 = append(c2, ev) })()

	h.Announce("c1", session.Event{Identity: &session.Identity{ID: "u1"}})

	require.Len(t, c1, 2)
	require.NotNil(t, c1[1].Identity)
	assert.Equal(t, "u1", c1[1].Identity.ID)
	assert.Len(t, c2, 1)
}

func TestHubReplaysLastStateToLateSubscriber(t *testing.T) {
	h := NewHub()
	h.Announce("c1", session.Event{Identity: &session.Identity{ID: "u1"}})

	var got []session.Event
	defer h.ForClient("c1").Subscribe(func(ev session.Event) { got = append(got, ev) })()

	require.Len(t, got, 1)
	require.NotNil(t, got[0].Identity)
	assert.Equal(t, "u1", got[0].Identity.ID)
}

func TestHubSignOutAnnouncesAnonymous(t *testing.T) {
	h := NewHub()
	p := h.ForClient("c1")

	var got []session.Event
	defer p.Subscribe(func(ev session.Event) { got = append(got, ev) })()

	h.Announce("c1", session.Event{Identity: &session.Identity{ID: "u1"}})
	p.SignOut()

	require.Len(t, got, 3)
	assert.Nil(t, got[2].Identity)
}

func TestHubCancelStopsDelivery(t *testing.T) {
	h := NewHub()

	var got []session.Event
	cancel := h.ForClient("c1").Subscribe(func(ev session.Event) { got = append(got, ev) })
	cancel()

	h.Announce("c1", session.Event{Identity: &session.Identity{ID: "u1"}})
	assert.Len(t, got, 1)
}
