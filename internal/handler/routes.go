package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/mrogers/photofolio/internal/blob"
)

// Routes assembles the router: public gallery pages, the rate-limited login
// form, and the admin area behind RequireAdmin. Everything browser-facing
// runs under CSRF protection; static assets and locally stored media do not.
func (h *Handler) Routes(staticFS fs.FS, loginRL *RateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	csrfProtect := csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https")),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// The local backend serves its own files; remote backends hand out
	// absolute URLs, so nothing is mounted for them.
	if local, ok := h.Blob.(*blob.Local); ok {
		prefix := strings.TrimSuffix(h.Cfg.MediaPrefix, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
	}

	r.Group(func(r chi.Router) {
		r.Use(csrfProtect)
		r.Use(h.WithSession)

		r.Get("/", h.Home)
		r.Get("/gallery", h.Gallery)
		r.Get("/about", h.About)
		r.Get("/pricing", h.Pricing)

		r.Group(func(r chi.Router) {
			r.Use(loginRL.Middleware)
			r.Get("/login", h.LoginForm)
			r.Post("/login", h.LoginSubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Post("/logout", h.Logout)
			r.Get("/upload", h.UploadForm)
			r.Post("/upload", h.UploadSubmit)
			r.Route("/admin", func(r chi.Router) {
				r.Get("/", h.AdminDashboard)
				r.Post("/", h.AdminUpdatePhoto)
				r.Post("/prices", h.AdminUpdatePrice)
				r.Get("/seed-prices", h.AdminSeedPrices)
			})
		})
	})

	return r
}
