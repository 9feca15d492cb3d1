package store

import (
	"context"

	"github.com/diewo77/dealflow/internal/models"
	"gorm.io/gorm"
)

type ManagerRepository interface {
	Create(ctx context.Context, name string) (models.Manager, error)
	FindByID(ctx context.Context, id uint) (models.Manager, error)
	List(ctx context.Context) ([]models.Manager, error)
}

type DocumentationRepository interface {
	Create(ctx context.Context, managerID uint, officer string) (models.Documentation, error)
}

// LegalAdvisorRepository reports created=true only when a new row was inserted.
type LegalAdvisorRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (advisor models.LegalAdvisor, created bool, err error)
}

type ContractRepository interface {
	Create(ctx context.Context, managerID, legalAdvisorID uint, advice string) (models.Contract, error)
	List(ctx context.Context) ([]models.Contract, error)
}

type ManufacturerRepository interface {
	FindOrCreateByName(ctx context.Context, name string) (m models.Manufacturer, created bool, err error)
	FindByID(ctx context.Context, id uint) (models.Manufacturer, error)
	List(ctx context.Context) ([]models.Manufacturer, error)
}

type gormManagers struct{ db *gorm.DB }

func (r gormManagers) Create(ctx context.Context, name string) (models.Manager, error) {
	m := models.Manager{Name: name}
	err := r.db.WithContext(ctx).Create(&m).Error
	return m, translate(err)
}

func (r gormManagers) FindByID(ctx context.Context, id uint) (models.Manager, error) {
	return first[models.Manager](ctx, r.db, id)
}

func (r gormManagers) List(ctx context.Context) ([]models.Manager, error) {
	var ms []models.Manager
	err := r.db.WithContext(ctx).Preload("Documentations").Order("id").Find(&ms).Error
	return ms, translate(err)
}

type gormDocumentation struct{ db *gorm.DB }

func (r gormDocumentation) Create(ctx context.Context, managerID uint, officer string) (models.Documentation, error) {
	d := models.Documentation{ManagerID: managerID, Officer: officer}
	err := r.db.WithContext(ctx).Create(&d).Error
	return d, translate(err)
}

type gormLegalAdvisors struct{ db *gorm.DB }

func (r gormLegalAdvisors) FindOrCreateByName(ctx context.Context, name string) (models.LegalAdvisor, bool, error) {
	return findOrCreateByName(ctx, r.db, name, models.LegalAdvisor{Name: name})
}

type gormContracts struct{ db *gorm.DB }

func (r gormContracts) Create(ctx context.Context, managerID, legalAdvisorID uint, advice string) (models.Contract, error) {
	c := models.Contract{ManagerID: managerID, LegalAdvisorID: legalAdvisorID, Advice: advice}
	err := r.db.WithContext(ctx).Create(&c).Error
	return c, translate(err)
}

func (r gormContracts) List(ctx context.Context) ([]models.Contract, error) {
	var cs []models.Contract
	err := r.db.WithContext(ctx).Preload("Manager").Preload("LegalAdvisor").Order("id").Find(&cs).Error
	return cs, translate(err)
}

type gormManufacturers struct{ db *gorm.DB }

func (r gormManufacturers) FindOrCreateByName(ctx context.Context, name string) (models.Manufacturer, bool, error) {
	return findOrCreateByName(ctx, r.db, name, models.Manufacturer{Name: name})
}

func (r gormManufacturers) FindByID(ctx context.Context, id uint) (models.Manufacturer, error) {
	return first[models.Manufacturer](ctx, r.db, id)
}

func (r gormManufacturers) List(ctx context.Context) ([]models.Manufacturer, error) {
	var ms []models.Manufacturer
	err := r.db.WithContext(ctx).Order("name").Find(&ms).Error
	return ms, translate(err)
}
