package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/mrogers/photofolio/internal/auth"
)

type loginPage struct {
	Email string
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.IsAdmin(r.Context()) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	data := PageData{Title: "Login", CSRF: csrf.TemplateField(r)}
	if r.URL.Query().Get("out") == "1" {
		data.Flash = "You have been signed out."
	}
	h.render(w, "login.html", data)
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if !strings.EqualFold(email, h.Cfg.AdminEmail) || !auth.CheckPassword(h.adminHash, password) {
		h.render(w, "login.html", PageData{
			Title: "Login",
			Error: "Invalid email or password.",
			CSRF:  csrf.TemplateField(r),
			Data:  loginPage{Email: email},
		})
		return
	}

	auth.IssueAdminCookie(w, h.Cfg.SessionSecret, strings.HasPrefix(h.Cfg.BaseURL, "https"))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAdminCookie(w)
	http.Redirect(w, r, "/login?out=1", http.StatusSeeOther)
}
