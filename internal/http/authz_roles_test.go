package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/http/handlers"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

// Minimal app with role-guarded groups and pre-bound sessions.
func newRoleApp(t *testing.T) (*fiber.App, *repos.SessionRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := repos.NewDocRepo(db, 0)
	sessions := repos.NewSessionRepo(db)
	deps := handlers.NewDeps(store, sessions, repos.NewSeenRepo(db), nil, 0)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})

	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }
	app.Group("/farmer", handlers.RequireRole(deps.Auth, domain.RoleFarmer)).Get("/", ok)
	app.Group("/admin", handlers.RequireRole(deps.Auth, domain.RoleAdmin)).Get("/", ok)
	return app, sessions
}

func getWithSID(t *testing.T, app *fiber.App, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRoleGuards(t *testing.T) {
	app, sessions := newRoleApp(t)

	if err := sessions.Bind("sid-farmer", domain.SessionUser{ID: "usr_fatou", Role: domain.RoleFarmer}); err != nil {
		t.Fatalf("bind farmer session: %v", err)
	}
	if err := sessions.Bind("sid-admin", domain.SessionUser{ID: repos.DefaultAdminID, Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("bind admin session: %v", err)
	}

	// Anonymous -> login redirect
	if resp := getWithSID(t, app, "/admin", ""); resp.StatusCode != http.StatusFound {
		t.Fatalf("anonymous expected redirect, got %d", resp.StatusCode)
	}

	// Unknown sid -> login redirect
	if resp := getWithSID(t, app, "/admin", "sid-ghost"); resp.StatusCode != http.StatusFound {
		t.Fatalf("stale sid expected redirect, got %d", resp.StatusCode)
	}

	// Farmer on /admin -> 403
	if resp := getWithSID(t, app, "/admin", "sid-farmer"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("farmer on /admin expected 403, got %d", resp.StatusCode)
	}

	// Admin on /farmer -> 403; roles do not imply each other
	if resp := getWithSID(t, app, "/farmer", "sid-admin"); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("admin on /farmer expected 403, got %d", resp.StatusCode)
	}

	// Matching roles pass
	if resp := getWithSID(t, app, "/farmer", "sid-farmer"); resp.StatusCode != http.StatusOK {
		t.Fatalf("farmer expected 200, got %d", resp.StatusCode)
	}
	if resp := getWithSID(t, app, "/admin", "sid-admin"); resp.StatusCode != http.StatusOK {
		t.Fatalf("admin expected 200, got %d", resp.StatusCode)
	}
}
