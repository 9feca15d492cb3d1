package policy

import (
	"time"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/internal/handlers"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/internal/store"
	"gorm.io/gorm"
)

// ProfileCacheTTL bounds how long a resolved role profile is reused.
const ProfileCacheTTL = 5 * time.Minute

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate
	Sessions *auth.Manager
	Store    *store.Store

	AuthHandler     *handlers.AuthHandler
	AdminHandler    *handlers.AdminHandler
	ManagerHandler  *handlers.ManagerHandler
	FinancerHandler *handlers.FinancerHandler
	DealsHandler    *handlers.DealsHandler
	AccountHandler  *handlers.AccountHandler

	Accounts *services.AccountService
}

// NewRouterConfig wires store, services and handlers over db. Sessions are
// verified through the gate's profile cache, so a live session costs no
// extra user lookup within the cache TTL.
func NewRouterConfig(db *gorm.DB, sessions *auth.Manager, bcryptCost int) *RouterConfig {
	s := store.New(db)
	authGate := NewAuthGate(s, ProfileCacheTTL)

	accounts := services.NewAccountService(s, bcryptCost)
	pipeline := services.NewPipelineService(s)
	reports := services.NewReportService(s)

	sessions.Verify = authGate.KnownUser

	return &RouterConfig{
		AuthGate:        authGate,
		Sessions:        sessions,
		Store:           s,
		AuthHandler:     handlers.NewAuthHandler(accounts, sessions),
		AdminHandler:    handlers.NewAdminHandler(accounts),
		ManagerHandler:  handlers.NewManagerHandler(pipeline, reports),
		FinancerHandler: handlers.NewFinancerHandler(pipeline, reports, authGate),
		DealsHandler:    handlers.NewDealsHandler(accounts, reports),
		AccountHandler:  handlers.NewAccountHandler(accounts),
		Accounts:        accounts,
	}
}
