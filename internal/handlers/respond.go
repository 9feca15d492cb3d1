package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/httpx"
	"github.com/diewo77/dealflow/i18n"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/validation"
	"github.com/diewo77/dealflow/view"
)

// DashboardFor returns the landing page of role; unknown roles land on "/".
func DashboardFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleManager:
		return "/manager/dashboard"
	case models.RoleManufacturer:
		return "/manufacturer/dashboard"
	case models.RoleFinancer:
		return "/financer/dashboard"
	case models.RoleRetailer:
		return "/retailer/dashboard"
	default:
		return "/"
	}
}

// render writes the page, or payload as JSON when the client only accepts JSON.
func render(w http.ResponseWriter, r *http.Request, tmpl string, data map[string]any, payload any) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, payload)
		return
	}
	if err := view.Render(w, r, tmpl, data); err != nil {
		slog.Error("render failed", "template", tmpl, "err", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// done reports a successful write: a flash and redirect for browsers, JSON otherwise.
// args fill the fmt verbs of the flash message, if it has any.
func done(w http.ResponseWriter, r *http.Request, status int, flashCode, redirect string, payload any, args ...any) {
	if httpx.WantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	if len(args) > 0 {
		view.Flashf(w, r, flashCode, args...)
	} else {
		view.Flash(w, r, flashCode)
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// fail maps a service error onto a status and user-facing message. Unexpected
// errors are logged with detail and shown only as a generic message.
func fail(w http.ResponseWriter, r *http.Request, err error, redirect string) {
	status, code := http.StatusInternalServerError, "flash_generic_error"
	var details any
	switch {
	case errors.Is(err, services.ErrPermissionDenied):
		status, code = http.StatusForbidden, "flash_user_forbidden"
	case errors.Is(err, services.ErrDuplicateUsername):
		status, code = http.StatusConflict, "flash_username_taken"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, code = http.StatusUnprocessableEntity, "flash_password_current_bad"
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "flash_not_found"
	default:
		if v, ok := services.Violations(err); ok {
			status, code = http.StatusUnprocessableEntity, "flash_form_invalid"
			details = translateViolations(r, v)
		} else {
			slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
	}
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	view.Flash(w, r, code)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func translateViolations(r *http.Request, v validation.Violations) map[string]string {
	lang := i18n.LangFromContext(r.Context())
	out := make(map[string]string, len(v))
	for field, code := range v {
		out[field] = i18n.T(lang, code)
	}
	return out
}

// formID parses an optional id field; blank means absent.
func formID(r *http.Request, field string, v validation.Violations) *uint {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		v[field] = "invalid_id"
		return nil
	}
	u := uint(id)
	return &u
}

func currentUserID(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}
