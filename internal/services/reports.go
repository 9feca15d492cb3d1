package services

import (
	"context"

	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/store"
)

// Overview is the public pipeline snapshot.
type Overview struct {
	Managers  []models.Manager  `json:"managers"`
	Contracts []models.Contract `json:"contracts"`
	Deals     []models.Deal     `json:"deals"`
}

// FinanceBoard feeds the financer dashboard forms.
type FinanceBoard struct {
	ProfitHandlers []models.ProfitHandler `json:"profit_handlers"`
	Manufacturers  []models.Manufacturer  `json:"manufacturers"`
	Retailers      []models.Retailer      `json:"retailers"`
	Deals          []models.Deal          `json:"deals"`
}

// ReportService holds the read-only views.
type ReportService struct {
	store *store.Store
}

func NewReportService(s *store.Store) *ReportService { return &ReportService{store: s} }

func (s *ReportService) Overview(ctx context.Context) (Overview, error) {
	var (
		out Overview
		err error
	)
	if out.Managers, err = s.store.Managers().List(ctx); err != nil {
		return Overview{}, err
	}
	if out.Contracts, err = s.store.Contracts().List(ctx); err != nil {
		return Overview{}, err
	}
	if out.Deals, err = s.store.Deals().List(ctx); err != nil {
		return Overview{}, err
	}
	return out, nil
}

func (s *ReportService) FinanceBoard(ctx context.Context) (FinanceBoard, error) {
	var (
		out FinanceBoard
		err error
	)
	if out.ProfitHandlers, err = s.store.ProfitHandlers().List(ctx); err != nil {
		return FinanceBoard{}, err
	}
	if out.Manufacturers, err = s.store.Manufacturers().List(ctx); err != nil {
		return FinanceBoard{}, err
	}
	if out.Retailers, err = s.store.Retailers().List(ctx); err != nil {
		return FinanceBoard{}, err
	}
	if out.Deals, err = s.store.Deals().List(ctx); err != nil {
		return FinanceBoard{}, err
	}
	return out, nil
}

func (s *ReportService) ListDealsForManufacturer(ctx context.Context, manufacturerID uint) ([]models.Deal, error) {
	return s.store.Deals().ListByManufacturer(ctx, manufacturerID)
}

func (s *ReportService) ListDealsForRetailer(ctx context.Context, retailerID uint) ([]models.Deal, error) {
	return s.store.Deals().ListByRetailer(ctx, retailerID)
}
