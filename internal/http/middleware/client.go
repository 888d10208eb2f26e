package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const clientIDKey ctxKey = "client_id"

// ClientIDFromContext returns the caller's stable client id.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(clientIDKey).(string)
	return v, ok
}

// RequireClient demands the X-Client-Id header: the per-browser storage
// namespace every session hangs off. No header, no session.
func RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Client-Id"))
		if id == "" {
			http.Error(w, "missing X-Client-Id", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), clientIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
