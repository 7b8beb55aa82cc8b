package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"

	"github.com/mrogers/photofolio/internal/auth"
	"github.com/mrogers/photofolio/internal/blob"
	"github.com/mrogers/photofolio/internal/config"
	"github.com/mrogers/photofolio/internal/diskstat"
	"github.com/mrogers/photofolio/internal/store"
	"github.com/mrogers/photofolio/internal/watermark"
)

type Handler struct {
	Store store.Store
	Blob  blob.Store
	WM    *watermark.Watermarker
	Cfg   *config.Config
	Disk  *diskstat.Cache

	adminHash string
	templates map[string]*template.Template
}

// New parses all templates from the embedded FS and hashes the admin
// password once so login never touches the plaintext from the environment.
func New(cfg *config.Config, st store.Store, bs blob.Store, wm *watermark.Watermarker, disk *diskstat.Cache, templateFS fs.FS) (*Handler, error) {
	adminHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	funcMap := template.FuncMap{
		"formatPrice": func(amount float64) string {
			return fmt.Sprintf("$%.2f", amount)
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04 UTC")
		},
		"formatBytes": func(b uint64) string {
			switch {
			case b >= 1<<30:
				return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
			case b >= 1<<20:
				return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
			case b >= 1<<10:
				return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
			default:
				return fmt.Sprintf("%d B", b)
			}
		},
		"titlecase": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	// Parse layout template as the base
	layoutTmpl := template.Must(
		template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"),
	)

	// Build per-page template sets: clone layout + parse page
	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if name == "layout.html" || e.IsDir() {
			continue
		}
		t := template.Must(template.Must(layoutTmpl.Clone()).ParseFS(templateFS, name))
		templates[name] = t
	}

	return &Handler{
		Store:     st,
		Blob:      bs,
		WM:        wm,
		Cfg:       cfg,
		Disk:      disk,
		adminHash: adminHash,
		templates: templates,
	}, nil
}

type PageData struct {
	Title   string
	IsAdmin bool
	Flash   string
	Error   string
	CSRF    template.HTML
	Data    interface{}
}

func (h *Handler) render(w http.ResponseWriter, name string, data PageData) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// renderPage fills the envelope fields every page shares; IsAdmin drives
// which nav links the layout shows and CSRF is the hidden form field.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data interface{}) {
	h.render(w, name, PageData{
		Title:   title,
		IsAdmin: auth.IsAdmin(r.Context()),
		CSRF:    csrf.TemplateField(r),
		Data:    data,
	})
}
