package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	html "github.com/gofiber/template/html/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/http/handlers"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

func extractCookieAuth(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func newAuthApp(t *testing.T) (*fiber.App, *handlers.Deps) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store := repos.NewDocRepo(db, 0)
	deps := handlers.NewDeps(store, repos.NewSessionRepo(db), repos.NewSeenRepo(db), nil, 0)

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)
	return app, deps
}

func postForm(t *testing.T, app *fiber.App, path, csrfTok string, values url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	values.Set("csrf", csrfTok)
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: csrfTok})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestRegisterThenLogin(t *testing.T) {
	app, _ := newAuthApp(t)

	respForm, _ := app.Test(httptest.NewRequest("GET", "/register", nil))
	csrfTok := extractCookieAuth(respForm, "csrf_")
	if csrfTok == "" {
		t.Fatal("csrf token missing")
	}

	resp := postForm(t, app, "/register", csrfTok, url.Values{
		"name": {"Fatou Diop"}, "email": {"fatou@example.com"},
		"password": {"secret123"}, "role": {"farmer"},
		"localisation": {"Thiès"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after register, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/farmer" {
		t.Fatalf("expected farmer dashboard redirect, got %s", loc)
	}
	if extractCookieAuth(resp, "sid") == "" {
		t.Fatal("sid cookie not issued")
	}

	// Wrong password -> 401
	respBad := postForm(t, app, "/login", csrfTok, url.Values{
		"email": {"fatou@example.com"}, "password": {"wrongpass"}, "role": {"farmer"},
	})
	if respBad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", respBad.StatusCode)
	}

	// Correct credentials -> redirect to role dashboard
	respGood := postForm(t, app, "/login", csrfTok, url.Values{
		"email": {"fatou@example.com"}, "password": {"secret123"}, "role": {"farmer"},
	})
	if respGood.StatusCode != http.StatusFound || respGood.Header.Get("Location") != "/farmer" {
		t.Fatalf("expected /farmer redirect, got %d %s", respGood.StatusCode, respGood.Header.Get("Location"))
	}

	// Wrong role for the account -> 401
	respRole := postForm(t, app, "/login", csrfTok, url.Values{
		"email": {"fatou@example.com"}, "password": {"secret123"}, "role": {"seller"},
	})
	if respRole.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for role mismatch, got %d", respRole.StatusCode)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	app, deps := newAuthApp(t)

	respForm, _ := app.Test(httptest.NewRequest("GET", "/register", nil))
	csrfTok := extractCookieAuth(respForm, "csrf_")

	// Admin self-registration is refused.
	resp := postForm(t, app, "/register", csrfTok, url.Values{
		"name": {"Intrus"}, "email": {"intrus@example.com"},
		"password": {"secret123"}, "role": {"admin"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for admin role, got %d", resp.StatusCode)
	}

	// Short password.
	resp = postForm(t, app, "/register", csrfTok, url.Values{
		"name": {"Fatou"}, "email": {"fatou@example.com"},
		"password": {"abc"}, "role": {"farmer"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}

	// Broken email.
	resp = postForm(t, app, "/register", csrfTok, url.Values{
		"name": {"Fatou"}, "email": {"not-an-email"},
		"password": {"secret123"}, "role": {"farmer"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad email, got %d", resp.StatusCode)
	}

	users, err := deps.Auth.Store.LoadUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("refused registrations must not create accounts, got %d users", len(users))
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	app, deps := newAuthApp(t)

	respForm, _ := app.Test(httptest.NewRequest("GET", "/register", nil))
	csrfTok := extractCookieAuth(respForm, "csrf_")

	resp := postForm(t, app, "/register", csrfTok, url.Values{
		"name": {"Fatou"}, "email": {"fatou@example.com"},
		"password": {"secret123"}, "role": {"farmer"},
	})
	sid := extractCookieAuth(resp, "sid")
	if sid == "" {
		t.Fatal("sid cookie not issued")
	}

	respOut := postForm(t, app, "/logout", csrfTok, url.Values{}, &http.Cookie{Name: "sid", Value: sid})
	if respOut.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on logout, got %d", respOut.StatusCode)
	}
	if u, err := deps.Auth.CurrentUser(sid); err == nil && u != nil {
		t.Fatalf("session survived logout: %+v", u)
	}
}
