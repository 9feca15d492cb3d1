package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/i18n"
	"github.com/diewo77/dealflow/internal/db"
	"github.com/diewo77/dealflow/internal/handlers"
	"github.com/diewo77/dealflow/internal/models"
	"github.com/diewo77/dealflow/internal/policy"
	"github.com/diewo77/dealflow/internal/services"
	"github.com/diewo77/dealflow/view"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const adminPassword = "admin-pass-1"

type testApp struct {
	app  *App
	cfg  *policy.RouterConfig
	conn *gorm.DB
	now  time.Time
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conn, err := db.OpenTest(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	_, err = db.Seed(context.Background(), conn, db.SeedOptions{
		AdminUsername: "admin",
		AdminPassword: adminPassword,
		BcryptCost:    bcrypt.MinCost,
	})
	require.NoError(t, err)

	view.ResetForTests()
	view.SetBaseDir("../../templates")
	t.Cleanup(view.ResetForTests)

	ta := &testApp{conn: conn, now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	sessions := auth.NewManager(auth.NewGormStore(conn), "test-secret", 30*time.Minute, false)
	sessions.Now = func() time.Time { return ta.now }
	ta.cfg = policy.NewRouterConfig(conn, sessions, bcrypt.MinCost)
	ta.app = NewApp(ta.cfg)
	return ta
}

func (ta *testApp) createUser(t *testing.T, username string, role models.Role, org func(*services.NewUser)) {
	t.Helper()
	in := services.NewUser{Username: username, Password: username + "-pass", Role: role}
	if org != nil {
		org(&in)
	}
	_, err := ta.cfg.Accounts.CreateUser(context.Background(), in, services.Identity{Role: models.RoleAdmin})
	require.NoError(t, err)
}

// do sends a request; form may be nil. asJSON sets Accept to application/json.
func (ta *testApp) do(method, path string, form url.Values, cookie *http.Cookie, asJSON bool) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return c
		}
	}
	return nil
}

func (ta *testApp) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := ta.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}, nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin_RedirectsToRoleDashboard(t *testing.T) {
	ta := newTestApp(t)
	for _, role := range models.Roles {
		if role == models.RoleAdmin {
			continue
		}
		ta.createUser(t, string(role)+"1", role, nil)
	}

	cases := map[string]string{
		"admin":         "/admin/dashboard",
		"manager1":      "/manager/dashboard",
		"manufacturer1": "/manufacturer/dashboard",
		"financer1":     "/financer/dashboard",
		"retailer1":     "/retailer/dashboard",
	}
	for username, want := range cases {
		password := username + "-pass"
		if username == "admin" {
			password = adminPassword
		}
		rec := ta.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {password}}, nil, false)
		require.Equal(t, http.StatusSeeOther, rec.Code, username)
		require.Equal(t, want, rec.Header().Get("Location"), username)

		c := sessionCookie(rec)
		require.NotNil(t, c, username)
		require.True(t, c.HttpOnly)

		page := ta.do(http.MethodGet, want, nil, c, false)
		require.Equal(t, http.StatusOK, page.Code, username+": "+page.Body.String())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(http.MethodPost, "/login", url.Values{"username": {"admin"}, "password": {"nope"}}, nil, true)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_credentials", decode(t, rec)["error"])
	require.Nil(t, sessionCookie(rec))

	rec = ta.do(http.MethodPost, "/login", url.Values{"username": {"ghost"}, "password": {"whatever"}}, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), i18n.T("en", "flash_login_failed"))
	require.Nil(t, sessionCookie(rec))
}

func TestUnknownRole_ForbiddenOnEveryDashboard(t *testing.T) {
	ta := newTestApp(t)
	ta.createUser(t, "visitor", models.Role("guest"), nil)

	rec := ta.do(http.MethodPost, "/login", url.Values{"username": {"visitor"}, "password": {"visitor-pass"}}, nil, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	c := sessionCookie(rec)
	require.NotNil(t, c)

	for _, path := range []string{
		"/admin/dashboard", "/manager/dashboard", "/manufacturer/dashboard",
		"/financer/dashboard", "/retailer/dashboard", "/view_users", "/account/password",
	} {
		got := ta.do(http.MethodGet, path, nil, c, false)
		require.Equal(t, http.StatusForbidden, got.Code, path)
	}
	home := ta.do(http.MethodGet, "/", nil, c, false)
	require.Equal(t, http.StatusOK, home.Code)
}

func TestProtectedRoutes_RequireLogin(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(http.MethodGet, "/manager/dashboard", nil, nil, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = ta.do(http.MethodPost, "/add_data", url.Values{"manager_name": {"x"}}, nil, true)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWrongRole_Forbidden(t *testing.T) {
	ta := newTestApp(t)
	ta.createUser(t, "mgr", models.RoleManager, nil)
	c := ta.login(t, "mgr", "mgr-pass")

	require.Equal(t, http.StatusForbidden, ta.do(http.MethodGet, "/admin/dashboard", nil, c, true).Code)
	require.Equal(t, http.StatusForbidden, ta.do(http.MethodPost, "/add_user", url.Values{"username": {"x"}}, c, true).Code)
	require.Equal(t, http.StatusForbidden, ta.do(http.MethodPost, "/financer/dashboard",
		url.Values{"form_type": {"profit_handler"}, "profit_handler_name": {"PH"}}, c, true).Code)
}

func TestSession_IdleTimeout(t *testing.T) {
	ta := newTestApp(t)
	c := ta.login(t, "admin", adminPassword)

	ta.now = ta.now.Add(29 * time.Minute)
	require.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/admin/dashboard", nil, c, true).Code)

	// The previous request slid the expiry forward.
	ta.now = ta.now.Add(29 * time.Minute)
	require.Equal(t, http.StatusOK, ta.do(http.MethodGet, "/admin/dashboard", nil, c, true).Code)

	ta.now = ta.now.Add(30 * time.Minute)
	rec := ta.do(http.MethodGet, "/admin/dashboard", nil, c, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	var n int64
	require.NoError(t, ta.conn.Model(&auth.SessionRecord{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestLogout_EndsSession(t *testing.T) {
	ta := newTestApp(t)
	c := ta.login(t, "admin", adminPassword)

	rec := ta.do(http.MethodGet, "/logout", nil, c, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = ta.do(http.MethodGet, "/admin/dashboard", nil, c, true)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_CreateAndListUsers(t *testing.T) {
	ta := newTestApp(t)
	c := ta.login(t, "admin", adminPassword)

	form := url.Values{"username": {"fin"}, "password": {"fin-pass"}, "role": {"financer"}}
	rec := ta.do(http.MethodPost, "/add_user", form, c, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	require.Equal(t, "fin", body["username"])
	require.NotContains(t, body, "password")

	rec = ta.do(http.MethodPost, "/add_user", form, c, true)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "flash_username_taken", decode(t, rec)["error"])

	rec = ta.do(http.MethodPost, "/add_user", url.Values{"username": {"x"}, "role": {"manager"}, "manager_id": {"abc"}}, c, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ta.do(http.MethodPost, "/add_user", url.Values{
		"username": {"mf"}, "password": {"mf-pass"}, "role": {"manufacturer"}, "manufacturer_id": {"42"},
	}, c, true)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = ta.do(http.MethodGet, "/view_users", nil, c, true)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)

	html := ta.do(http.MethodGet, "/view_users", nil, c, false)
	require.Equal(t, http.StatusOK, html.Code)
	require.Contains(t, html.Body.String(), "fin")

	// Browser form posts get a flash and a redirect back to the form.
	rec = ta.do(http.MethodPost, "/add_user", url.Values{"username": {"ret"}, "password": {"ret-pass"}, "role": {"retailer"}}, c, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/add_user", rec.Header().Get("Location"))
}

func TestManager_AddDataAndDocumentation(t *testing.T) {
	ta := newTestApp(t)
	ta.createUser(t, "mgr", models.RoleManager, nil)
	c := ta.login(t, "mgr", "mgr-pass")

	form := url.Values{
		"manager_name":       {"Alice"},
		"contract_advice":    {"Approve with conditions"},
		"legal_advisor_name": {"Lex & Co"},
		"manufacturer_name":  {"Acme"},
		"deal_status":        {"negotiating"},
	}
	rec := ta.do(http.MethodPost, "/add_data", form, c, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	require.Equal(t, true, body["manufacturer_created"])

	form.Set("manager_name", "Bob")
	rec = ta.do(http.MethodPost, "/add_data", form, c, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, false, decode(t, rec)["manufacturer_created"])

	var managers, manufacturers, deals int64
	require.NoError(t, ta.conn.Model(&models.Manager{}).Count(&managers).Error)
	require.NoError(t, ta.conn.Model(&models.Manufacturer{}).Count(&manufacturers).Error)
	require.NoError(t, ta.conn.Model(&models.Deal{}).Count(&deals).Error)
	require.EqualValues(t, 2, managers)
	require.EqualValues(t, 1, manufacturers)
	require.EqualValues(t, 2, deals)

	rec = ta.do(http.MethodPost, "/add_data", url.Values{"manager_name": {"Carol"}}, c, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var mgr models.Manager
	require.NoError(t, ta.conn.Where("name = ?", "Alice").First(&mgr).Error)
	rec = ta.do(http.MethodPost, "/add_documentation", url.Values{
		"manager_id": {jsonID(mgr.ID)}, "officer": {"Dana"},
	}, c, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ta.do(http.MethodPost, "/add_documentation", url.Values{"manager_id": {"999"}, "officer": {"Dana"}}, c, true)
	require.Equal(t, http.StatusNotFound, rec.Code)

	page := ta.do(http.MethodGet, "/manager/dashboard", nil, c, false)
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "Alice")
}

func TestFinancer_Forms(t *testing.T) {
	ta := newTestApp(t)
	ta.createUser(t, "fin", models.RoleFinancer, nil)
	c := ta.login(t, "fin", "fin-pass")
	require.NoError(t, ta.conn.Create(&models.Manufacturer{Name: "Acme"}).Error)
	var acme models.Manufacturer
	require.NoError(t, ta.conn.Where("name = ?", "Acme").First(&acme).Error)

	post := func(form url.Values) *httptest.ResponseRecorder {
		return ta.do(http.MethodPost, "/financer/dashboard", form, c, true)
	}

	rec := post(url.Values{"form_type": {"profit_handler"}, "profit_handler_name": {"Capital"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	phID := uint(decode(t, rec)["id"].(float64))

	rec = post(url.Values{"form_type": {"accountant"}, "accountant_name": {"Eve"}, "profit_handler_id": {jsonID(phID)}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = post(url.Values{"form_type": {"accountant"}, "accountant_name": {"Mallory"}, "profit_handler_id": {"999"}})
	require.Equal(t, http.StatusNotFound, rec.Code)
	var accountants int64
	require.NoError(t, ta.conn.Model(&models.Accountant{}).Count(&accountants).Error)
	require.EqualValues(t, 1, accountants)

	rec = post(url.Values{
		"form_type":          {"deal"},
		"deal_status":        {"funded"},
		"manufacturer_id":    {jsonID(acme.ID)},
		"profit_handler_ids": {jsonID(phID) + ",999,x"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode(t, rec)
	require.Equal(t, []any{float64(phID)}, res["linked"])
	require.Equal(t, []any{float64(999)}, res["skipped"])
	require.Equal(t, []any{"x"}, res["invalid"])
	dealID := uint(res["deal"].(map[string]any)["id"].(float64))

	rec = post(url.Values{"form_type": {"deal_link"}, "deal_id": {jsonID(dealID)}, "profit_handler_id": {jsonID(phID)}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, decode(t, rec)["linked"])
	var links int64
	require.NoError(t, ta.conn.Model(&models.DealProfitHandler{}).Count(&links).Error)
	require.EqualValues(t, 1, links)

	rec = post(url.Values{"form_type": {"retailer"}, "retailer_name": {"ShopRight"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	retailerID := uint(decode(t, rec)["id"].(float64))

	rec = post(url.Values{"form_type": {"retailer_link"}, "deal_id": {jsonID(dealID)}, "retailer_id": {jsonID(retailerID)}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = post(url.Values{"form_type": {"bogus"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "flash_unknown_form", decode(t, rec)["error"])

	page := ta.do(http.MethodGet, "/financer/dashboard", nil, c, false)
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "Capital")
	require.Contains(t, page.Body.String(), "ShopRight")
}

func TestFinancer_DealFlashNamesUnlinkedIDs(t *testing.T) {
	ta := newTestApp(t)
	ta.createUser(t, "fin", models.RoleFinancer, nil)
	c := ta.login(t, "fin", "fin-pass")
	acme := models.Manufacturer{Name: "Acme"}
	require.NoError(t, ta.conn.Create(&acme).Error)
	ph := models.ProfitHandler{Name: "Capital"}
	require.NoError(t, ta.conn.Create(&ph).Error)

	rec := ta.do(http.MethodPost, "/financer/dashboard", url.Values{
		"form_type":          {"deal"},
		"deal_status":        {"funded"},
		"manufacturer_id":    {jsonID(acme.ID)},
		"profit_handler_ids": {jsonID(ph.ID) + ",999,x"},
	}, c, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	var flash string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "flash" {
			flash, _ = url.QueryUnescape(ck.Value)
		}
	}
	require.Equal(t, "Deal added, 2 profit handler id(s) not linked: 999, x", flash)
}

func TestOrgDashboards(t *testing.T) {
	ta := newTestApp(t)
	acme := models.Manufacturer{Name: "Acme"}
	require.NoError(t, ta.conn.Create(&acme).Error)
	shop := models.Retailer{Name: "Shop"}
	require.NoError(t, ta.conn.Create(&shop).Error)
	linked := models.Deal{Status: "open", ManufacturerID: acme.ID}
	other := models.Deal{Status: "closed", ManufacturerID: acme.ID}
	require.NoError(t, ta.conn.Create(&linked).Error)
	require.NoError(t, ta.conn.Create(&other).Error)
	require.NoError(t, ta.conn.Create(&models.RetailerDeal{RetailerID: shop.ID, DealID: linked.ID}).Error)

	ta.createUser(t, "maker", models.RoleManufacturer, func(in *services.NewUser) { in.ManufacturerID = &acme.ID })
	ta.createUser(t, "seller", models.RoleRetailer, func(in *services.NewUser) { in.RetailerID = &shop.ID })
	ta.createUser(t, "loner", models.RoleRetailer, nil)

	rec := ta.do(http.MethodGet, "/manufacturer/dashboard", nil, ta.login(t, "maker", "maker-pass"), true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["deals"], 2)

	rec = ta.do(http.MethodGet, "/retailer/dashboard", nil, ta.login(t, "seller", "seller-pass"), true)
	require.Equal(t, http.StatusOK, rec.Code)
	deals := decode(t, rec)["deals"].([]any)
	require.Len(t, deals, 1)
	require.Equal(t, "open", deals[0].(map[string]any)["status"])

	rec = ta.do(http.MethodGet, "/retailer/dashboard", nil, ta.login(t, "loner", "loner-pass"), false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), i18n.T("en", "flash_retailer_unbound"))
}

func TestAccount_ChangePassword(t *testing.T) {
	ta := newTestApp(t)
	c := ta.login(t, "admin", adminPassword)

	rec := ta.do(http.MethodPost, "/account/password", url.Values{
		"current_password": {"wrong"}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pass"},
	}, c, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ta.do(http.MethodPost, "/account/password", url.Values{
		"current_password": {adminPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"different"},
	}, c, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ta.do(http.MethodPost, "/account/password", url.Values{
		"current_password": {adminPassword}, "new_password": {"brand-new-pass"}, "confirm_password": {"brand-new-pass"},
	}, c, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ta.login(t, "admin", "brand-new-pass")
}

func TestPublicPages(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(http.MethodGet, "/", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = ta.do(http.MethodGet, "/display_data", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Contracts")

	rec = ta.do(http.MethodGet, "/display_data", nil, nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ta.do(http.MethodGet, "/login", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ta.do(http.MethodGet, "/healthz", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])

	require.Equal(t, http.StatusNotFound, ta.do(http.MethodGet, "/no-such-page", nil, nil, false).Code)
}

func TestPreferences_Language(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.do(http.MethodGet, "/?lang=fr", nil, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `lang="fr"`)
	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "lang" {
			langCookie = c
		}
	}
	require.NotNil(t, langCookie)
	require.Equal(t, "fr", langCookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "fr-CA,fr;q=0.9,en;q=0.8")
	out := httptest.NewRecorder()
	ta.app.ServeHTTP(out, req)
	require.Contains(t, out.Body.String(), `lang="fr"`)

	rec = ta.do(http.MethodGet, "/?lang=xx", nil, nil, false)
	require.Contains(t, rec.Body.String(), `lang="en"`)
}

func TestDashboardFor_MatchesRoutes(t *testing.T) {
	for _, role := range models.Roles {
		require.NotEqual(t, "/", handlers.DashboardFor(role), role)
	}
	require.Equal(t, "/", handlers.DashboardFor("guest"))
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
