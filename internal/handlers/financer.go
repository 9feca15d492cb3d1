package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/dealflow/gate"
	"github.com/diewo77/dealflow/httpx"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/validation"
	"github.com/diewo77/dealflow/view"
)

// Authorizer answers permission questions for the request's user.
type Authorizer interface {
	Can(ctx context.Context, action gate.Action, resourceType string) bool
}

type financeForm struct {
	resource string
	action   gate.Action
	handle   func(h *FinancerHandler, w http.ResponseWriter, r *http.Request)
}

// financeForms maps form_type to the permission it needs and its handler.
var financeForms = map[string]financeForm{
	"accountant":     {"accountant", gate.ActionCreate, (*FinancerHandler).addAccountant},
	"profit_handler": {"profit_handler", gate.ActionCreate, (*FinancerHandler).addProfitHandler},
	"deal":           {"deal", gate.ActionCreate, (*FinancerHandler).addDeal},
	"retailer":       {"retailer", gate.ActionCreate, (*FinancerHandler).addRetailer},
	"retailer_link":  {"deal", gate.ActionLink, (*FinancerHandler).linkRetailer},
	"deal_link":      {"deal", gate.ActionLink, (*FinancerHandler).linkProfitHandler},
}

const financerPath = "/financer/dashboard"

type FinancerHandler struct {
	pipeline *services.PipelineService
	reports  *services.ReportService
	authz    Authorizer
}

func NewFinancerHandler(pipeline *services.PipelineService, reports *services.ReportService, authz Authorizer) *FinancerHandler {
	return &FinancerHandler{pipeline: pipeline, reports: reports, authz: authz}
}

func (h *FinancerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.reports.FinanceBoard(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "financer/dashboard.html", map[string]any{"Board": board}, board)
}

// Submit dispatches on form_type after checking that form's own permission.
func (h *FinancerHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, ok := financeForms[r.FormValue("form_type")]
	if !ok {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "flash_unknown_form", nil)
			return
		}
		view.Flash(w, r, "flash_unknown_form")
		http.Redirect(w, r, financerPath, http.StatusSeeOther)
		return
	}
	if !h.authz.Can(r.Context(), form.action, form.resource) {
		httpx.Forbidden(w, r)
		return
	}
	form.handle(h, w, r)
}

func (h *FinancerHandler) addAccountant(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	phID := validation.PositiveID("profit_handler_id", r.FormValue("profit_handler_id"), v)
	validation.Required("accountant_name", r.FormValue("accountant_name"), v)
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, financerPath)
		return
	}
	acc, err := h.pipeline.AddAccountant(r.Context(), r.FormValue("accountant_name"), phID)
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	done(w, r, http.StatusCreated, "flash_accountant_saved", financerPath, acc)
}

func (h *FinancerHandler) addProfitHandler(w http.ResponseWriter, r *http.Request) {
	ph, err := h.pipeline.AddProfitHandler(r.Context(), r.FormValue("profit_handler_name"))
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	done(w, r, http.StatusCreated, "flash_profit_handler_saved", financerPath, ph)
}

func (h *FinancerHandler) addDeal(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	manufacturerID := validation.PositiveID("manufacturer_id", r.FormValue("manufacturer_id"), v)
	validation.Required("deal_status", r.FormValue("deal_status"), v)
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, financerPath)
		return
	}
	res, err := h.pipeline.AddDeal(r.Context(), services.DealInput{
		Status:           r.FormValue("deal_status"),
		ManufacturerID:   manufacturerID,
		ProfitHandlerIDs: r.FormValue("profit_handler_ids"),
	})
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	unlinked := make([]string, 0, len(res.Skipped)+len(res.Invalid))
	for _, id := range res.Skipped {
		unlinked = append(unlinked, strconv.FormatUint(uint64(id), 10))
	}
	unlinked = append(unlinked, res.Invalid...)
	if len(unlinked) == 0 {
		done(w, r, http.StatusCreated, "flash_deal_saved", financerPath, res)
		return
	}
	done(w, r, http.StatusCreated, "flash_deal_skipped", financerPath, res, len(unlinked), strings.Join(unlinked, ", "))
}

func (h *FinancerHandler) addRetailer(w http.ResponseWriter, r *http.Request) {
	rt, err := h.pipeline.AddRetailer(r.Context(), r.FormValue("retailer_name"))
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	done(w, r, http.StatusCreated, "flash_retailer_saved", financerPath, rt)
}

func (h *FinancerHandler) linkRetailer(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	dealID := validation.PositiveID("deal_id", r.FormValue("deal_id"), v)
	retailerID := validation.PositiveID("retailer_id", r.FormValue("retailer_id"), v)
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, financerPath)
		return
	}
	linked, err := h.pipeline.LinkRetailer(r.Context(), dealID, retailerID)
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	done(w, r, http.StatusOK, "flash_retailer_linked", financerPath, map[string]any{
		"deal_id": dealID, "retailer_id": retailerID, "linked": linked,
	})
}

func (h *FinancerHandler) linkProfitHandler(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	dealID := validation.PositiveID("deal_id", r.FormValue("deal_id"), v)
	phID := validation.PositiveID("profit_handler_id", r.FormValue("profit_handler_id"), v)
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, financerPath)
		return
	}
	linked, err := h.pipeline.LinkProfitHandler(r.Context(), dealID, phID)
	if err != nil {
		fail(w, r, err, financerPath)
		return
	}
	code := "flash_link_created"
	if !linked {
		code = "flash_link_exists"
	}
	done(w, r, http.StatusOK, code, financerPath, map[string]any{
		"deal_id": dealID, "profit_handler_id": phID, "linked": linked,
	})
}
