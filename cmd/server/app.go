package main

import (
	"net/http"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/gate"
	"github.com/diewo77/dealflow/i18n"
	"github.com/diewo77/dealflow/internal/handlers"
	"github.com/diewo77/dealflow/internal/policy"
	"github.com/diewo77/dealflow/view"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	handler   http.Handler
	routerCfg *policy.RouterConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	// Templates ask the gate directly so the view package stays free of policy types.
	view.SetCanResolver(func(r *http.Request, resource, action string) bool {
		return routerCfg.AuthGate.Can(r.Context(), gate.Action(action), resource)
	})
	app.setupRoutes()
	app.handler = routerCfg.Sessions.Middleware(withPreferences(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ah := a.routerCfg.AuthHandler

	// Public routes
	a.mux.HandleFunc("GET /{$}", a.home)
	a.mux.HandleFunc("GET /login", ah.LoginForm)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("GET /logout", a.logout)
	a.mux.HandleFunc("POST /logout", a.logout)
	a.mux.HandleFunc("GET /display_data", a.routerCfg.DealsHandler.Display)
	a.mux.HandleFunc("GET /healthz", handlers.Health(a.routerCfg.Store))

	// Administration
	adm := a.routerCfg.AdminHandler
	a.protect("GET /admin/dashboard", policy.ResAdminDashboard, gate.ActionView, adm.Dashboard)
	a.protect("GET /add_user", policy.ResUser, gate.ActionCreate, adm.NewUser)
	a.protect("POST /add_user", policy.ResUser, gate.ActionCreate, adm.CreateUser)
	a.protect("GET /view_users", policy.ResUser, gate.ActionList, adm.ListUsers)

	// Manager stage
	mh := a.routerCfg.ManagerHandler
	a.protect("GET /manager/dashboard", policy.ResManagerDashboard, gate.ActionView, mh.Dashboard)
	a.protect("POST /add_data", policy.ResContract, gate.ActionCreate, mh.AddData)
	a.protect("POST /add_documentation", policy.ResDocumentation, gate.ActionCreate, mh.AddDocumentation)

	// Financer stage. Each form_type is checked again against its own permission.
	fh := a.routerCfg.FinancerHandler
	a.protect("GET /financer/dashboard", policy.ResFinancerDashboard, gate.ActionView, fh.Dashboard)
	a.protect("POST /financer/dashboard", policy.ResFinancerDashboard, gate.ActionView, fh.Submit)

	// Read views bound to an organisation
	dh := a.routerCfg.DealsHandler
	a.protect("GET /manufacturer/dashboard", policy.ResManufacturerDashboard, gate.ActionView, dh.ManufacturerDashboard)
	a.protect("GET /retailer/dashboard", policy.ResRetailerDashboard, gate.ActionView, dh.RetailerDashboard)

	// Self-service
	acc := a.routerCfg.AccountHandler
	a.protect("GET /account/password", policy.ResAccount, gate.ActionUpdate, acc.PasswordForm)
	a.protect("POST /account/password", policy.ResAccount, gate.ActionUpdate, acc.ChangePassword)
}

// protect registers h behind authentication and the resource:action permission.
func (a *App) protect(pattern, resource string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(a.routerCfg.AuthGate.RequirePermission(resource, action)(h)))
}

// withPreferences injects the language preference from query, cookie or Accept-Language.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	if err := view.Render(w, r, "home.html", nil); err != nil {
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// logout drops the cached profile along with the session.
func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if uid, ok := auth.UserIDFromContext(r.Context()); ok {
		a.routerCfg.AuthGate.InvalidateUser(uid)
	}
	a.routerCfg.AuthHandler.Logout(w, r)
}
