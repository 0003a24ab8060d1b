package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireRole additionally enforces one of the given roles.
func RequireRole(auth *services.AuthService, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login")
		}
		for _, r := range roles {
			if u.Role == r {
				c.Locals("user", u)
				return c.Next()
			}
		}
		applog.Security(c, "access.denied.role", map[string]any{"sid": sid, "role": u.Role})
		return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Accès refusé"})
	}
}
