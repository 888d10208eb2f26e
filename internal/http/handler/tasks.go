package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"doable/internal/http/middleware"
	"doable/internal/session"
	"doable/internal/task"

	"github.com/go-chi/chi/v5"
)

// TaskHandler is the intent channel between clients and their task engines.
type TaskHandler struct {
	Sessions *session.Manager
}

func (h *TaskHandler) engine(r *http.Request) *task.Service {
	clientID, _ := middleware.ClientIDFromContext(r.Context())
	return h.Sessions.Get(clientID).Engine()
}

type taskDTO struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Completed bool     `json:"completed"`
	Priority  string   `json:"priority"`
	Tags      []string `json:"tags"`
	Category  string   `json:"category"`
	CreatedAt string   `json:"created_at"`
}

// List returns the derived view plus counters over the canonical list.
// Query params: filter=all|active|completed, category, tag (repeatable),
// sort=default|priority|alphabetical.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	eng := h.engine(r)

	q := task.Query{
		Completion: task.Completion(strings.TrimSpace(r.URL.Query().Get("filter"))),
		Category:   strings.TrimSpace(r.URL.Query().Get("category")),
	}
	for _, t := range r.URL.Query()["tag"] {
		t = strings.TrimSpace(t)
		if t != "" {
			q.Tags = append(q.Tags, t)
		}
	}
	mode := task.SortMode(strings.TrimSpace(r.URL.Query().Get("sort")))

	items := eng.Items()
	view := task.Project(items, q, mode)

	out := make([]taskDTO, 0, len(view))
	for _, it := range view {
		out = append(out, toDTO(it))
	}

	completed := 0
	for _, it := range items {
		if it.Completed {
			completed++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"tasks":     out,
		"total":     len(items),
		"completed": completed,
		"active":    len(items) - completed,
	})
}

type createTaskReq struct {
	Text     string   `json:"text"`
	Priority string   `json:"priority"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text required", http.StatusBadRequest)
		return
	}

	h.engine(r).Add(r.Context(), task.AddInput{
		Text:     req.Text,
		Priority: task.Priority(req.Priority),
		Tags:     req.Tags,
		Category: req.Category,
	})
	w.WriteHeader(http.StatusCreated)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.engine(r).Toggle(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	h.engine(r).Edit(r.Context(), chi.URLParam(r, "id"), req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Reprioritize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Priority string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	h.engine(r).Reprioritize(r.Context(), chi.URLParam(r, "id"), task.Priority(req.Priority))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Retag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	h.engine(r).Retag(r.Context(), chi.URLParam(r, "id"), req.Tags)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Recategorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	h.engine(r).Recategorize(r.Context(), chi.URLParam(r, "id"), req.Category)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.engine(r).Delete(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	h.engine(r).ClearCompleted(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func toDTO(it task.Item) taskDTO {
	return taskDTO{
		ID:        it.ID,
		Text:      it.Text,
		Completed: it.Completed,
		Priority:  string(it.Priority),
		Tags:      []string(it.Tags),
		Category:  it.Category,
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
	}
}
