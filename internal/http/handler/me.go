package handler

import (
	"encoding/json"
	"net/http"

	"doable/internal/http/middleware"
	"doable/internal/session"
)

type MeHandler struct {
	Sessions *session.Manager
}

// Me reports the caller's session identity, mirroring the cached profile blob.
func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	clientID, _ := middleware.ClientIDFromContext(r.Context())
	id := h.Sessions.Get(clientID).Identity()

	w.Header().Set("Content-Type", "application/json")
	if id == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{"isLoggedIn": false})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":         id.ID,
		"name":       id.Name,
		"email":      id.Email,
		"picture":    id.Picture,
		"isLoggedIn": true,
	})
}
