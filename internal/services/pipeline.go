package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/store"
	"github.com/diewo77/dealflow/validation"
)

// ContractSubmission is the manager's contract form.
type ContractSubmission struct {
	ManagerName      string
	Advice           string
	LegalAdvisorName string
	ManufacturerName string
	DealStatus       string
}

type ContractResult struct {
	Manager             models.Manager      `json:"manager"`
	LegalAdvisor        models.LegalAdvisor `json:"legal_advisor"`
	LegalAdvisorCreated bool                `json:"legal_advisor_created"`
	Manufacturer        models.Manufacturer `json:"manufacturer"`
	ManufacturerCreated bool                `json:"manufacturer_created"`
	Contract            models.Contract     `json:"contract"`
	Deal                models.Deal         `json:"deal"`
}

// DealInput is the financer's deal form. ProfitHandlerIDs is the raw
// comma separated list as typed by the user.
type DealInput struct {
	Status           string
	ManufacturerID   uint
	ProfitHandlerIDs string
}

// DealResult reports what happened to each requested profit handler.
type DealResult struct {
	Deal models.Deal `json:"deal"`
	// Linked ids resolved and are now associated with the deal.
	Linked []uint `json:"linked"`
	// Skipped ids were well formed but matched no profit handler.
	Skipped []uint `json:"skipped,omitempty"`
	// Invalid holds tokens that are not positive integers.
	Invalid []string `json:"invalid,omitempty"`
}

type PipelineService struct {
	store *store.Store
}

func NewPipelineService(s *store.Store) *PipelineService { return &PipelineService{store: s} }

// SubmitContract records a negotiation in one transaction: a new Manager, the
// legal advisor and manufacturer found or created by name, a Contract between
// manager and advisor, and a Deal for the manufacturer.
func (s *PipelineService) SubmitContract(ctx context.Context, in ContractSubmission) (ContractResult, error) {
	in.ManagerName = strings.TrimSpace(in.ManagerName)
	in.Advice = strings.TrimSpace(in.Advice)
	in.LegalAdvisorName = strings.TrimSpace(in.LegalAdvisorName)
	in.ManufacturerName = strings.TrimSpace(in.ManufacturerName)
	in.DealStatus = strings.TrimSpace(in.DealStatus)

	v := validation.Violations{}
	validation.Required("manager_name", in.ManagerName, v)
	validation.Required("contract_advice", in.Advice, v)
	validation.Required("legal_advisor_name", in.LegalAdvisorName, v)
	validation.Required("manufacturer_name", in.ManufacturerName, v)
	validation.Required("deal_status", in.DealStatus, v)
	if err := invalid(v); err != nil {
		return ContractResult{}, err
	}

	var res ContractResult
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error
		if res.Manager, err = tx.Managers().Create(ctx, in.ManagerName); err != nil {
			return fmt.Errorf("create manager: %w", err)
		}
		if res.LegalAdvisor, res.LegalAdvisorCreated, err = tx.LegalAdvisors().FindOrCreateByName(ctx, in.LegalAdvisorName); err != nil {
			return fmt.Errorf("legal advisor: %w", err)
		}
		if res.Manufacturer, res.ManufacturerCreated, err = tx.Manufacturers().FindOrCreateByName(ctx, in.ManufacturerName); err != nil {
			return fmt.Errorf("manufacturer: %w", err)
		}
		if res.Contract, err = tx.Contracts().Create(ctx, res.Manager.ID, res.LegalAdvisor.ID, in.Advice); err != nil {
			return fmt.Errorf("create contract: %w", err)
		}
		if res.Deal, err = tx.Deals().Create(ctx, in.DealStatus, res.Manufacturer.ID); err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		return nil
	})
	if err != nil {
		return ContractResult{}, err
	}
	return res, nil
}

// AddDocumentation files a documentation officer under an existing manager.
func (s *PipelineService) AddDocumentation(ctx context.Context, managerID uint, officer string) (models.Documentation, error) {
	officer = strings.TrimSpace(officer)
	v := validation.Violations{}
	validation.Required("officer", officer, v)
	if managerID == 0 {
		v["manager_id"] = "required"
	}
	if err := invalid(v); err != nil {
		return models.Documentation{}, err
	}
	var doc models.Documentation
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Managers().FindByID(ctx, managerID); err != nil {
			return fmt.Errorf("manager %d: %w", managerID, err)
		}
		var err error
		doc, err = tx.Documentation().Create(ctx, managerID, officer)
		return err
	})
	return doc, err
}

func (s *PipelineService) AddProfitHandler(ctx context.Context, name string) (models.ProfitHandler, error) {
	name = strings.TrimSpace(name)
	v := validation.Violations{}
	validation.Required("profit_handler_name", name, v)
	if err := invalid(v); err != nil {
		return models.ProfitHandler{}, err
	}
	return s.store.ProfitHandlers().Create(ctx, name)
}

// AddAccountant attaches a new accountant to an existing profit handler.
// Nothing is written when the profit handler does not exist.
func (s *PipelineService) AddAccountant(ctx context.Context, name string, profitHandlerID uint) (models.Accountant, error) {
	name = strings.TrimSpace(name)
	v := validation.Violations{}
	validation.Required("accountant_name", name, v)
	if profitHandlerID == 0 {
		v["profit_handler_id"] = "required"
	}
	if err := invalid(v); err != nil {
		return models.Accountant{}, err
	}
	var acc models.Accountant
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.ProfitHandlers().FindByID(ctx, profitHandlerID); err != nil {
			return fmt.Errorf("profit handler %d: %w", profitHandlerID, err)
		}
		var err error
		acc, err = tx.Accountants().Create(ctx, name, profitHandlerID)
		return err
	})
	return acc, err
}

// AddDeal creates a deal for an existing manufacturer and links every
// profit handler id that resolves. Unresolved and malformed ids are reported
// in the result rather than failing the whole deal.
func (s *PipelineService) AddDeal(ctx context.Context, in DealInput) (DealResult, error) {
	in.Status = strings.TrimSpace(in.Status)
	v := validation.Violations{}
	validation.Required("deal_status", in.Status, v)
	if in.ManufacturerID == 0 {
		v["manufacturer_id"] = "required"
	}
	if err := invalid(v); err != nil {
		return DealResult{}, err
	}
	ids, bad := ParseIDList(in.ProfitHandlerIDs)

	res := DealResult{Linked: []uint{}, Invalid: bad}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Manufacturers().FindByID(ctx, in.ManufacturerID); err != nil {
			return fmt.Errorf("manufacturer %d: %w", in.ManufacturerID, err)
		}
		deal, err := tx.Deals().Create(ctx, in.Status, in.ManufacturerID)
		if err != nil {
			return fmt.Errorf("create deal: %w", err)
		}
		res.Deal = deal
		for _, id := range ids {
			if _, err := tx.ProfitHandlers().FindByID(ctx, id); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					res.Skipped = append(res.Skipped, id)
					continue
				}
				return err
			}
			if _, err := tx.Deals().LinkProfitHandler(ctx, deal.ID, id); err != nil {
				return fmt.Errorf("link profit handler %d: %w", id, err)
			}
			res.Linked = append(res.Linked, id)
		}
		return nil
	})
	if err != nil {
		return DealResult{}, err
	}
	return res, nil
}

func (s *PipelineService) AddRetailer(ctx context.Context, name string) (models.Retailer, error) {
	name = strings.TrimSpace(name)
	v := validation.Violations{}
	validation.Required("retailer_name", name, v)
	if err := invalid(v); err != nil {
		return models.Retailer{}, err
	}
	return s.store.Retailers().Create(ctx, name)
}

// LinkRetailer associates a retailer with a deal. Repeating it is a no-op that
// returns linked=false.
func (s *PipelineService) LinkRetailer(ctx context.Context, dealID, retailerID uint) (bool, error) {
	if err := requireIDs(map[string]uint{"deal_id": dealID, "retailer_id": retailerID}); err != nil {
		return false, err
	}
	var linked bool
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Deals().FindByID(ctx, dealID); err != nil {
			return fmt.Errorf("deal %d: %w", dealID, err)
		}
		if _, err := tx.Retailers().FindByID(ctx, retailerID); err != nil {
			return fmt.Errorf("retailer %d: %w", retailerID, err)
		}
		var err error
		linked, err = tx.Deals().LinkRetailer(ctx, dealID, retailerID)
		return err
	})
	return linked, err
}

// LinkProfitHandler associates a profit handler with a deal, idempotently.
func (s *PipelineService) LinkProfitHandler(ctx context.Context, dealID, profitHandlerID uint) (bool, error) {
	if err := requireIDs(map[string]uint{"deal_id": dealID, "profit_handler_id": profitHandlerID}); err != nil {
		return false, err
	}
	var linked bool
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.Deals().FindByID(ctx, dealID); err != nil {
			return fmt.Errorf("deal %d: %w", dealID, err)
		}
		if _, err := tx.ProfitHandlers().FindByID(ctx, profitHandlerID); err != nil {
			return fmt.Errorf("profit handler %d: %w", profitHandlerID, err)
		}
		var err error
		linked, err = tx.Deals().LinkProfitHandler(ctx, dealID, profitHandlerID)
		return err
	})
	return linked, err
}

func requireIDs(ids map[string]uint) error {
	v := validation.Violations{}
	for field, id := range ids {
		if id == 0 {
			v[field] = "required"
		}
	}
	return invalid(v)
}

// ParseIDList splits "1, 2,x,2" into unique positive ids (in first-seen order)
// and the tokens that are not positive integers. Empty tokens are ignored.
func ParseIDList(raw string) (ids []uint, bad []string) {
	seen := map[uint]bool{}
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || n == 0 {
			bad = append(bad, tok)
			continue
		}
		id := uint(n)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, bad
}
