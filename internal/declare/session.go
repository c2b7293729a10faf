package declare

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "declare_session"

type contextKey string

const sessionKeyCtx contextKey = "sessionKey"

// SessionMiddleware tags every browser with a stable random session id
// cookie. The id keys the per-session database connection, so each browser
// keeps its own connection across requests.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			key = c.Value
		}
		if key == "" {
			key = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    key,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), sessionKeyCtx, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionKey returns the caller's session id, falling back to a shared key
// when the middleware is not mounted (tests, health probes).
func sessionKey(r *http.Request) string {
	if v, ok := r.Context().Value(sessionKeyCtx).(string); ok && v != "" {
		return v
	}
	return "anonymous"
}
