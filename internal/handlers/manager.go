package handlers

import (
	"net/http"

	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/validation"
)

type ManagerHandler struct {
	pipeline *services.PipelineService
	reports  *services.ReportService
}

func NewManagerHandler(pipeline *services.PipelineService, reports *services.ReportService) *ManagerHandler {
	return &ManagerHandler{pipeline: pipeline, reports: reports}
}

func (h *ManagerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ov, err := h.reports.Overview(r.Context())
	if err != nil {
		fail(w, r, err, "/")
		return
	}
	render(w, r, "manager/dashboard.html", map[string]any{"Managers": ov.Managers}, map[string]any{"managers": ov.Managers})
}

// AddData handles the contract form.
func (h *ManagerHandler) AddData(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.SubmitContract(r.Context(), services.ContractSubmission{
		ManagerName:      r.FormValue("manager_name"),
		Advice:           r.FormValue("contract_advice"),
		LegalAdvisorName: r.FormValue("legal_advisor_name"),
		ManufacturerName: r.FormValue("manufacturer_name"),
		DealStatus:       r.FormValue("deal_status"),
	})
	if err != nil {
		fail(w, r, err, "/manager/dashboard")
		return
	}
	done(w, r, http.StatusCreated, "flash_contract_saved", "/manager/dashboard", res)
}

func (h *ManagerHandler) AddDocumentation(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	managerID := validation.PositiveID("manager_id", r.FormValue("manager_id"), v)
	if !v.Empty() {
		fail(w, r, &services.InvalidInputError{Violations: v}, "/manager/dashboard")
		return
	}
	doc, err := h.pipeline.AddDocumentation(r.Context(), managerID, r.FormValue("officer"))
	if err != nil {
		fail(w, r, err, "/manager/dashboard")
		return
	}
	done(w, r, http.StatusCreated, "flash_documentation_saved", "/manager/dashboard", doc)
}
