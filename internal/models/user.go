package models

import "time"

// Role is the closed set of application roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleManufacturer Role = "manufacturer"
	RoleFinancer     Role = "financer"
	RoleRetailer     Role = "retailer"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleManufacturer, RoleFinancer, RoleRetailer}

// Valid reports whether r is one of the known roles.
// Unknown roles can still be stored; they simply grant nothing.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// User represents an authenticated user in the system.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role      Role      `gorm:"size:50;not null" json:"role"`

	ManagerID *uint    `gorm:"index" json:"manager_id,omitempty"`
	Manager   *Manager `gorm:"foreignKey:ManagerID" json:"-"`
	// ManufacturerID and RetailerID bind a login to the organization whose deals it sees.
	ManufacturerID *uint `gorm:"index" json:"manufacturer_id,omitempty"`
	RetailerID     *uint `gorm:"index" json:"retailer_id,omitempty"`
}
