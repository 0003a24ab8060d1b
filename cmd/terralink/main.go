package main

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/config"
	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/http/handlers"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	docRepo := repos.NewDocRepo(db, cfg.MaxDocBytes)
	sessions := repos.NewSessionRepo(db)
	seen := repos.NewSeenRepo(db)
	cache := config.NewRedisClient()
	if cache == nil {
		log.Printf("[cache] redis not configured, announcements cache disabled")
	}

	// Remote mirror: pull once, then push after every save.
	syncSvc := services.NewSyncService(cfg.RemoteSyncURL, docRepo)
	if syncSvc != nil {
		docRepo.SetPusher(syncSvc)
		defer syncSvc.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		syncSvc.PullOnStartup(ctx)
		cancel()
	}

	// Installs the seed (and default admin) on first run.
	if _, err := docRepo.Load(); err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(docRepo, sessions, seen, cache, cfg.CacheTTL)

	// Templates & app
	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Une erreur est survenue. Réessayez.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Une erreur est survenue. Réessayez.")
			}
			return nil
		},
	})
	// Data-URL photos inflate form posts well past the usual limits.
	app.Server().MaxRequestBodySize = 8 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := deps.Auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		// Mirror peers speak plain JSON, not forms.
		Next: func(c *fiber.Ctx) bool { return strings.HasPrefix(c.Path(), "/api/") },
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Vérification de sécurité échouée. Rechargez la page."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	app.Static("/static", "./web/static")

	// ---------- Public pages ----------
	app.Get("/", deps.PublicHandler.Landing)
	app.Get("/profiles", deps.ProfilesHandler.List)
	app.Get("/profiles/:id", deps.ProfilesHandler.Detail)
	app.Get("/api/v1/announcements", deps.PublicHandler.Announcements)

	// ---------- Auth (login throttled) ----------
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Trop de tentatives. Réessayez plus tard."})
		},
	}), deps.AuthHandler.Login)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Post("/logout", deps.AuthHandler.Logout)

	// ---------- Role dashboards ----------
	farmer := app.Group("/farmer", handlers.RequireRole(deps.Auth, domain.RoleFarmer))
	farmer.Get("/", deps.FarmerHandler.Dashboard)
	farmer.Post("/requests", deps.FarmerHandler.CreateRequest)
	farmer.Post("/notices", deps.FarmerHandler.CreateNotice)

	seller := app.Group("/seller", handlers.RequireRole(deps.Auth, domain.RoleSeller))
	seller.Get("/", deps.SellerHandler.Dashboard)
	seller.Post("/listings", deps.SellerHandler.Publish)
	seller.Post("/requests/:id/status", deps.SellerHandler.ModerateRequest)

	owner := app.Group("/owner", handlers.RequireRole(deps.Auth, domain.RoleOwner))
	owner.Get("/", deps.OwnerHandler.Dashboard)
	owner.Post("/listings", deps.OwnerHandler.Publish)
	owner.Post("/requests/:id/status", deps.OwnerHandler.ModerateRequest)

	admin := app.Group("/admin", handlers.RequireRole(deps.Auth, domain.RoleAdmin))
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Post("/listings/:id/status", deps.AdminHandler.ModerateListing)
	admin.Post("/notices/:id/status", deps.AdminHandler.ModerateNotice)

	// ---------- Mirror endpoint ----------
	app.Get("/api/db", deps.SyncAPIHandler.Get)
	app.Put("/api/db", deps.SyncAPIHandler.Put)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page introuvable"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
