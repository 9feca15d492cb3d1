package handlers

import (
	"net/http"

	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/validation"
)

type AdminHandler struct {
	accounts *services.AccountService
}

func NewAdminHandler(accounts *services.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "admin/dashboard.html", map[string]any{
		"UserCount": len(users),
	}, map[string]any{"user_count": len(users)})
}

func (h *AdminHandler) NewUser(w http.ResponseWriter, r *http.Request) {
	render(w, r, "admin/add_user.html", map[string]any{
		"Roles": models.Roles,
	}, map[string]any{"roles": models.Roles})
}

// CreateUser handles POST /add_user.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	requester, err := h.accounts.Identity(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, err, "/add_user")
		return
	}
	v := validation.Violations{}
	in := services.NewUser{
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		Role:           models.Role(r.FormValue("role")),
		ManagerID:      formID(r, "manager_id", v),
		ManufacturerID: formID(r, "manufacturer_id", v),
		RetailerID:     formID(r, "retailer_id", v),
	}
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, "/add_user")
		return
	}
	u, err := h.accounts.CreateUser(r.Context(), in, requester)
	if err != nil {
		fail(w, r, err, "/add_user")
		return
	}
	done(w, r, http.StatusCreated, "flash_user_created", "/add_user", u)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		fail(w, r, err, "/admin/dashboard")
		return
	}
	render(w, r, "admin/users.html", map[string]any{"Users": users}, users)
}
