package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/httpx"
	"github.com/diewo77/dealflow/i18n"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/view"
)

type AuthHandler struct {
	accounts *services.AccountService
	sessions *auth.Manager
}

func NewAuthHandler(accounts *services.AccountService, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if err := view.Render(w, r, "login.html", nil); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// Login authenticates and redirects to the role's dashboard. A role with no
// dashboard still gets a session and lands on the home page.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	id, err := h.accounts.Authenticate(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			fail(w, r, err, "/login")
			return
		}
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		_ = view.Render(w, r, "login.html", map[string]any{
			"Error":    i18n.T(i18n.LangFromContext(r.Context()), "flash_login_failed"),
			"Username": username,
		})
		return
	}

	if _, err := h.sessions.Create(r.Context(), w, id.UserID); err != nil {
		fail(w, r, err, "/login")
		return
	}
	target := DashboardFor(id.Role)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"redirect": target, "user": id})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	done(w, r, http.StatusOK, "flash_logged_out", "/login", map[string]string{"status": "logged_out"})
}
