package handlers

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyMiddleware guards destructive operations with a pre-hashed admin
// key supplied in the X-Admin-Key header. An empty hash disables the check,
// which is the expected setup for single-operator deployments.
func AdminKeyMiddleware(adminKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKeyHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-Admin-Key")
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "X-Admin-Key header required"})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(adminKeyHash), []byte(key)); err != nil {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid admin key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
