package middleware

import (
	"net/http"
	"strings"

	"agentx/internal/auth"
	"agentx/internal/httputil"
)

// Auth verifies the Bearer token and puts the user ID into the request
// context. Applied per-route: only project and prompt routes require it.
func Auth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "Access denied", "missing bearer token")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "Invalid token", "")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.Subject))
		})
	}
}
