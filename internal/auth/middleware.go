package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Middleware validates a Bearer access token and stamps X-User-Id for the
// downstream handlers. The header is always stripped first so a client can
// never forge it. Requests without a token pass through anonymously;
// handlers that need a user enforce it themselves.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del("X-User-Id")
			r.Header.Del("X-User-Email")

			auth := r.Header.Get("Authorization")
			if auth != "" {
				parts := strings.SplitN(auth, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					claims := &TokenClaims{}
					token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
						return secret, nil
					})
					if err == nil && token.Valid && claims.TokenType == "access" {
						r.Header.Set("X-User-Id", claims.UserID)
						r.Header.Set("X-User-Email", claims.Email)
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser rejects requests that did not authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-User-Id") == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
