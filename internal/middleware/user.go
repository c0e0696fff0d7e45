package middleware

import (
	"net/http"
	"strings"

	"github.com/kairoshq/kairos/internal/ctxkeys"
)

// RequireUser resolves the caller from the X-User-ID header and puts it on
// the request context. Identity verification happens upstream at the
// gateway; this service treats the id as opaque.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
			return
		}

		ctx := ctxkeys.WithUserID(r.Context(), userID)
		next(w, r.WithContext(ctx))
	}
}
