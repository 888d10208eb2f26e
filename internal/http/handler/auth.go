package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"doable/internal/auth"
	"doable/internal/http/middleware"
	"doable/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB       *gorm.DB
	JWT      *auth.JWT
	Hub      *auth.Hub
	Sessions *session.Manager
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || len(req.Password) < 8 {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = "User"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	u := auth.User{ID: uuid.NewString(), Email: req.Email, Name: req.Name, PasswordHash: hash}
	if err := h.DB.Create(&u).Error; err != nil {
		http.Error(w, "email already used", http.StatusConflict)
		return
	}

	h.signIn(w, r, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	var u auth.User
	if err := h.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	h.signIn(w, r, u)
}

// signIn issues the token and announces the identity transition for the
// caller's client, which switches that session onto the remote backend.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, u auth.User) {
	token, err := h.JWT.Sign(u)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	clientID, _ := middleware.ClientIDFromContext(r.Context())
	h.Sessions.Get(clientID) // make sure the session is subscribed first
	h.Hub.Announce(clientID, session.Event{Identity: &session.Identity{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token": token,
		"user": map[string]any{
			"id":      u.ID,
			"name":    u.Name,
			"email":   u.Email,
			"picture": u.Picture,
		},
	})
}

// Resume re-establishes identity from a previously issued token, the way a
// reopened browser restores its persisted auth session.
func (h *AuthHandler) Resume(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	clientID, _ := middleware.ClientIDFromContext(r.Context())
	h.Sessions.Get(clientID)
	h.Hub.Announce(clientID, session.Event{Identity: &session.Identity{
		ID:      claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}})
	w.WriteHeader(http.StatusNoContent)
}

// Logout asks the session's provider to terminate; the anonymous transition
// comes back through the event stream.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clientID, _ := middleware.ClientIDFromContext(r.Context())
	h.Sessions.Get(clientID).Logout()
	w.WriteHeader(http.StatusNoContent)
}
