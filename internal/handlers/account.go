package handlers

import (
	"net/http"

	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/validation"
)

const passwordPath = "/account/password"

// AccountHandler lets any signed-in user change their own password.
type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) PasswordForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, "account/password.html", nil, map[string]any{"min_length": services.MinPasswordLength})
}

// ChangePassword handles POST /account/password
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	next := r.FormValue("new_password")
	if next != r.FormValue("confirm_password") {
		fail(w, r, &services.InvalidInputError{Violations: validation.Violations{"confirm_password": "flash_password_mismatch"}}, passwordPath)
		return
	}
	err := h.accounts.ChangePassword(r.Context(), currentUserID(r), r.FormValue("current_password"), next)
	if err != nil {
		fail(w, r, err, passwordPath)
		return
	}
	done(w, r, http.StatusOK, "flash_password_saved", passwordPath, map[string]string{"status": "password_updated"})
}
