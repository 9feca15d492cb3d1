package models

import "time"

type ProfitHandler struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Name        string       `gorm:"size:150;not null" json:"name"`
	Accountants []Accountant `json:"accountants,omitempty"`
}

type Accountant struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	Name            string         `gorm:"size:150;not null" json:"name"`
	ProfitHandlerID uint           `gorm:"index;not null" json:"profit_handler_id"`
	ProfitHandler   *ProfitHandler `json:"-"`
}

type Retailer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"size:150;not null" json:"name"`
}

// DealProfitHandler is the deal_profit_handler join row; the composite key makes links idempotent.
type DealProfitHandler struct {
	DealID          uint `gorm:"primaryKey;autoIncrement:false"`
	ProfitHandlerID uint `gorm:"primaryKey;autoIncrement:false"`
}

func (DealProfitHandler) TableName() string { return "deal_profit_handler" }

// RetailerDeal is the retailer_deal join row.
type RetailerDeal struct {
	RetailerID uint `gorm:"primaryKey;autoIncrement:false"`
	DealID     uint `gorm:"primaryKey;autoIncrement:false"`
}

func (RetailerDeal) TableName() string { return "retailer_deal" }

// All returns every persisted model in dependency order, for migrations.
func All() []any {
	return []any{
		&Manager{}, &User{}, &Documentation{}, &LegalAdvisor{}, &Contract{},
		&Manufacturer{}, &ProfitHandler{}, &Accountant{}, &Retailer{},
		&Deal{}, &DealProfitHandler{}, &RetailerDeal{},
	}
}
