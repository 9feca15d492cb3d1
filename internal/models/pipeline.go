package models

import "time"

// Manager negotiates contracts and owns documentation.
type Manager struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	Name           string          `gorm:"size:150;not null" json:"name"`
	Documentations []Documentation `json:"documentations,omitempty"`
	Contracts      []Contract      `json:"contracts,omitempty"`
}

type Documentation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Officer   string    `gorm:"size:150;not null" json:"officer"`
	ManagerID uint      `gorm:"index;not null" json:"manager_id"`
	Manager   *Manager  `json:"-"`
}

func (Documentation) TableName() string { return "documentation" }

// LegalAdvisor is looked up by name and created on first use.
type LegalAdvisor struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Name      string     `gorm:"uniqueIndex;size:150;not null" json:"name"`
	Contracts []Contract `json:"contracts,omitempty"`
}

type Contract struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	Advice         string        `gorm:"size:255;not null" json:"advice"`
	ManagerID      uint          `gorm:"index;not null" json:"manager_id"`
	Manager        *Manager      `json:"manager,omitempty"`
	LegalAdvisorID uint          `gorm:"index;not null" json:"legal_advisor_id"`
	LegalAdvisor   *LegalAdvisor `json:"legal_advisor,omitempty"`
}

// Manufacturer is looked up by name and created on first use.
type Manufacturer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;size:150;not null" json:"name"`
	Deals     []Deal    `json:"deals,omitempty"`
}

type Deal struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	Status         string          `gorm:"size:100;not null" json:"status"`
	ManufacturerID uint            `gorm:"index;not null" json:"manufacturer_id"`
	Manufacturer   *Manufacturer   `json:"manufacturer,omitempty"`
	ProfitHandlers []ProfitHandler `gorm:"many2many:deal_profit_handler" json:"profit_handlers,omitempty"`
	Retailers      []Retailer      `gorm:"many2many:retailer_deal" json:"retailers,omitempty"`
}
