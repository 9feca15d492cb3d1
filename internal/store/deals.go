package store

import (
	"context"

	"github.com/diewo77/dealflow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealRepository links report linked=false when the association already existed.
type DealRepository interface {
	Create(ctx context.Context, status string, manufacturerID uint) (models.Deal, error)
	FindByID(ctx context.Context, id uint) (models.Deal, error)
	LinkProfitHandler(ctx context.Context, dealID, profitHandlerID uint) (linked bool, err error)
	LinkRetailer(ctx context.Context, dealID, retailerID uint) (linked bool, err error)
	List(ctx context.Context) ([]models.Deal, error)
	ListByManufacturer(ctx context.Context, manufacturerID uint) ([]models.Deal, error)
	ListByRetailer(ctx context.Context, retailerID uint) ([]models.Deal, error)
}

type ProfitHandlerRepository interface {
	Create(ctx context.Context, name string) (models.ProfitHandler, error)
	FindByID(ctx context.Context, id uint) (models.ProfitHandler, error)
	List(ctx context.Context) ([]models.ProfitHandler, error)
}

type AccountantRepository interface {
	Create(ctx context.Context, name string, profitHandlerID uint) (models.Accountant, error)
}

type RetailerRepository interface {
	Create(ctx context.Context, name string) (models.Retailer, error)
	FindByID(ctx context.Context, id uint) (models.Retailer, error)
	List(ctx context.Context) ([]models.Retailer, error)
}

type gormDeals struct{ db *gorm.DB }

func (r gormDeals) Create(ctx context.Context, status string, manufacturerID uint) (models.Deal, error) {
	d := models.Deal{Status: status, ManufacturerID: manufacturerID}
	// Omit associations so an empty Manufacturer pointer never upserts a row.
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&d).Error
	return d, translate(err)
}

func (r gormDeals) FindByID(ctx context.Context, id uint) (models.Deal, error) {
	var d models.Deal
	err := r.preloaded(ctx).First(&d, id).Error
	return d, translate(err)
}

func (r gormDeals) LinkProfitHandler(ctx context.Context, dealID, profitHandlerID uint) (bool, error) {
	return r.link(ctx, &models.DealProfitHandler{DealID: dealID, ProfitHandlerID: profitHandlerID})
}

func (r gormDeals) LinkRetailer(ctx context.Context, dealID, retailerID uint) (bool, error) {
	return r.link(ctx, &models.RetailerDeal{RetailerID: retailerID, DealID: dealID})
}

func (r gormDeals) link(ctx context.Context, row any) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r gormDeals) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Manufacturer").
		Preload("ProfitHandlers", func(db *gorm.DB) *gorm.DB { return db.Order("profit_handlers.id") }).
		Preload("Retailers", func(db *gorm.DB) *gorm.DB { return db.Order("retailers.id") })
}

func (r gormDeals) List(ctx context.Context) ([]models.Deal, error) {
	var ds []models.Deal
	err := r.preloaded(ctx).Order("deals.id").Find(&ds).Error
	return ds, translate(err)
}

func (r gormDeals) ListByManufacturer(ctx context.Context, manufacturerID uint) ([]models.Deal, error) {
	var ds []models.Deal
	err := r.preloaded(ctx).Where("deals.manufacturer_id = ?", manufacturerID).Order("deals.id").Find(&ds).Error
	return ds, translate(err)
}

func (r gormDeals) ListByRetailer(ctx context.Context, retailerID uint) ([]models.Deal, error) {
	var ds []models.Deal
	err := r.preloaded(ctx).
		Joins("JOIN retailer_deal ON retailer_deal.deal_id = deals.id").
		Where("retailer_deal.retailer_id = ?", retailerID).
		Order("deals.id").
		Find(&ds).Error
	return ds, translate(err)
}

type gormProfitHandlers struct{ db *gorm.DB }

func (r gormProfitHandlers) Create(ctx context.Context, name string) (models.ProfitHandler, error) {
	p := models.ProfitHandler{Name: name}
	err := r.db.WithContext(ctx).Create(&p).Error
	return p, translate(err)
}

func (r gormProfitHandlers) FindByID(ctx context.Context, id uint) (models.ProfitHandler, error) {
	return first[models.ProfitHandler](ctx, r.db, id)
}

func (r gormProfitHandlers) List(ctx context.Context) ([]models.ProfitHandler, error) {
	var ps []models.ProfitHandler
	err := r.db.WithContext(ctx).Preload("Accountants").Order("id").Find(&ps).Error
	return ps, translate(err)
}

type gormAccountants struct{ db *gorm.DB }

func (r gormAccountants) Create(ctx context.Context, name string, profitHandlerID uint) (models.Accountant, error) {
	a := models.Accountant{Name: name, ProfitHandlerID: profitHandlerID}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&a).Error
	return a, translate(err)
}

type gormRetailers struct{ db *gorm.DB }

func (r gormRetailers) Create(ctx context.Context, name string) (models.Retailer, error) {
	rt := models.Retailer{Name: name}
	err := r.db.WithContext(ctx).Create(&rt).Error
	return rt, translate(err)
}

func (r gormRetailers) FindByID(ctx context.Context, id uint) (models.Retailer, error) {
	return first[models.Retailer](ctx, r.db, id)
}

func (r gormRetailers) List(ctx context.Context) ([]models.Retailer, error) {
	var rs []models.Retailer
	err := r.db.WithContext(ctx).Order("id").Find(&rs).Error
	return rs, translate(err)
}
