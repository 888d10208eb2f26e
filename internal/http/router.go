package http

import (
	"net/http"

	"doable/internal/auth"
	"doable/internal/config"
	"doable/internal/http/handler"
	mw "doable/internal/http/middleware"
	"doable/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, hub *auth.Hub, sessions *session.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Hub: hub, Sessions: sessions}
	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.RequireClient)

		r.Post("/register", ah.Register)
		r.Post("/login", ah.Login)
		r.With(auth.RequireAuth(jwtSvc)).Post("/resume", ah.Resume)
		r.Post("/logout", ah.Logout)
	})

	me := &handler.MeHandler{Sessions: sessions}
	r.With(mw.RequireClient).Get("/me", me.Me)

	th := &handler.TaskHandler{Sessions: sessions}
	r.Route("/tasks", func(r chi.Router) {
		r.Use(mw.RequireClient)

		r.Get("/", th.List)
		r.Post("/", th.Create)
		r.Delete("/completed", th.ClearCompleted)

		r.Post("/{id}/toggle", th.Toggle)
		r.Put("/{id}/text", th.Edit)
		r.Put("/{id}/priority", th.Reprioritize)
		r.Put("/{id}/tags", th.Retag)
		r.Put("/{id}/category", th.Recategorize)
		r.Delete("/{id}", th.Delete)
	})

	return r
}
