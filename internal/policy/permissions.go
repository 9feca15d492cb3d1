package policy

import (
	"github.com/diewo77/dealflow/gate"
	"github.com/diewo77/dealflow/internal/models"
)

// Resource names used in "resource:action" permissions.
const (
	ResAdminDashboard        = "admin_dashboard"
	ResManagerDashboard      = "manager_dashboard"
	ResManufacturerDashboard = "manufacturer_dashboard"
	ResFinancerDashboard     = "financer_dashboard"
	ResRetailerDashboard     = "retailer_dashboard"
	ResUser                  = "user"
	ResAccount               = "account"
	ResContract              = "contract"
	ResDocumentation         = "documentation"
	ResAccountant            = "accountant"
	ResProfitHandler         = "profit_handler"
	ResDeal                  = "deal"
	ResRetailer              = "retailer"
)

func perm(resource string, action gate.Action) gate.Permission {
	return gate.NewPermission(resource, action)
}

// roleProfiles is the whole access-control table. There is no role hierarchy:
// admin holds only the administration capabilities listed here.
var roleProfiles = map[models.Role]*gate.StaticProfile{
	models.RoleAdmin: gate.NewStaticProfile(string(models.RoleAdmin),
		perm(ResAdminDashboard, gate.ActionView),
		perm(ResUser, gate.ActionCreate),
		perm(ResUser, gate.ActionList),
		perm(ResAccount, gate.ActionUpdate),
	),
	models.RoleManager: gate.NewStaticProfile(string(models.RoleManager),
		perm(ResManagerDashboard, gate.ActionView),
		perm(ResContract, gate.ActionCreate),
		perm(ResDocumentation, gate.ActionCreate),
		perm(ResAccount, gate.ActionUpdate),
	),
	models.RoleManufacturer: gate.NewStaticProfile(string(models.RoleManufacturer),
		perm(ResManufacturerDashboard, gate.ActionView),
		perm(ResAccount, gate.ActionUpdate),
	),
	models.RoleFinancer: gate.NewStaticProfile(string(models.RoleFinancer),
		perm(ResFinancerDashboard, gate.ActionView),
		perm(ResAccountant, gate.ActionCreate),
		perm(ResProfitHandler, gate.ActionCreate),
		perm(ResDeal, gate.ActionCreate),
		perm(ResDeal, gate.ActionLink),
		perm(ResRetailer, gate.ActionCreate),
		perm(ResAccount, gate.ActionUpdate),
	),
	models.RoleRetailer: gate.NewStaticProfile(string(models.RoleRetailer),
		perm(ResRetailerDashboard, gate.ActionView),
		perm(ResAccount, gate.ActionUpdate),
	),
}

// ProfileFor returns the capability set of role, or nil for unknown roles.
func ProfileFor(role models.Role) gate.Profile {
	p, ok := roleProfiles[role]
	if !ok {
		return nil
	}
	return p
}

// Can is the central permission check by role.
func Can(role models.Role, p gate.Permission) bool {
	profile := ProfileFor(role)
	return profile != nil && profile.HasPermission(p)
}
