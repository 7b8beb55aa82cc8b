package handler

import (
	"net/http"

	"github.com/mrogers/photofolio/internal/auth"
)

// WithSession annotates the request context when a valid admin cookie is
// present. It never rejects; public pages use it to decide whether to show
// the admin navigation.
func (h *Handler) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.VerifyAdminCookie(r, h.Cfg.SessionSecret) {
			r = r.WithContext(auth.WithAdmin(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin gates the upload and admin pages behind the session cookie.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdmin(r.Context()) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
