package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/dealflow/i18n"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/services"
)

// DealsHandler serves the read-only deal views.
type DealsHandler struct {
	accounts *services.AccountService
	reports  *services.ReportService
}

func NewDealsHandler(accounts *services.AccountService, reports *services.ReportService) *DealsHandler {
	return &DealsHandler{accounts: accounts, reports: reports}
}

// Display is the public pipeline overview.
func (h *DealsHandler) Display(w http.ResponseWriter, r *http.Request) {
	ov, err := h.reports.Overview(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "display.html", map[string]any{
		"Managers":  ov.Managers,
		"Contracts": ov.Contracts,
		"Deals":     ov.Deals,
	}, ov)
}

// ManufacturerDashboard lists the deals of the manufacturer bound to the user.
func (h *DealsHandler) ManufacturerDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := h.accounts.Identity(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	h.dealsPage(w, r, "manufacturer/dashboard.html", id.ManufacturerID, "flash_manufacturer_unbound", h.reports.ListDealsForManufacturer)
}

// RetailerDashboard lists the deals linked to the retailer bound to the user.
func (h *DealsHandler) RetailerDashboard(w http.ResponseWriter, r *http.Request) {
	id, err := h.accounts.Identity(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	h.dealsPage(w, r, "retailer/dashboard.html", id.RetailerID, "flash_retailer_unbound", h.reports.ListDealsForRetailer)
}

func (h *DealsHandler) dealsPage(
	w http.ResponseWriter, r *http.Request, tmpl string, orgID *uint, unboundCode string,
	list func(ctx context.Context, id uint) ([]models.Deal, error),
) {
	deals := []models.Deal{}
	notice := ""
	if orgID == nil {
		notice = i18n.T(i18n.LangFromContext(r.Context()), unboundCode)
	} else {
		var err error
		if deals, err = list(r.Context(), *orgID); err != nil {
			fail(w, r, err, "/")
			return
		}
	}
	render(w, r, tmpl, map[string]any{"Deals": deals, "Notice": notice}, map[string]any{"deals": deals, "notice": notice})
}
