package middleware

import (
	"net/http"

	"github.com/MrEthical07/goToken/principal"
)

const (
	unauthorizedBody = `{"error":"unauthorized"}`
	forbiddenBody    = `{"error":"forbidden"}`
)

func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits identities holding any of roles.
func RequireRole(roles ...principal.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, unauthorizedBody)
				return
			}
			if !id.HasRole(roles...) {
				writeError(w, http.StatusForbidden, forbiddenBody)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
