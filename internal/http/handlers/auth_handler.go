package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
	"github.com/Uchiwa75567/TerraLinkk/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func dashboardPath(role domain.Role) string {
	switch role {
	case domain.RoleFarmer:
		return "/farmer"
	case domain.RoleSeller:
		return "/seller"
	case domain.RoleOwner:
		return "/owner"
	case domain.RoleAdmin:
		return "/admin"
	default:
		return "/"
	}
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	role, okRole := validate.Role(c.FormValue("role"))
	if _, ok := validate.Email(email); !ok || !okRole {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(401).Render("login", fiber.Map{"Err": "Email, mot de passe et rôle sont requis."})
	}

	u, err := h.Auth.Login(sid, email, pass, role)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(401).Render("login", fiber.Map{"Err": services.UserMessage(err)})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": email, "role": role})
	return c.Redirect(dashboardPath(u.Role))
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	sid := ensureSID(c)
	name, okName := validate.Name(c.FormValue("name"))
	email, okEmail := validate.Email(c.FormValue("email"))
	pass := c.FormValue("password")
	role, okRole := validate.Role(c.FormValue("role"))
	if !okName || !okEmail || !okRole {
		return c.Status(400).Render("register", fiber.Map{"Err": "Nom, email et rôle sont requis."})
	}
	if !validate.Password(pass) {
		return c.Status(400).Render("register", fiber.Map{"Err": "Le mot de passe doit contenir au moins 6 caractères."})
	}

	// Free-form profile fields; keys vary with the chosen role.
	profile := map[string]string{}
	for _, key := range []string{
		"contact", "localisation", "culturesPrincipales", "tailleExploitation",
		"nombreEmployes", "certifications", "entreprise", "categoriesProduits",
		"capaciteStock", "regionService", "machinesDisponibles", "tarifHoraireMoyen",
	} {
		if v := c.FormValue(key); v != "" {
			profile[key] = v
		}
	}

	u, err := h.Auth.Register(sid, name, email, pass, role, profile, c.FormValue("avatar"))
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": email, "role": role})
		return c.Status(400).Render("register", fiber.Map{"Err": services.UserMessage(err)})
	}

	applog.Audit(c, "auth.register.success", map[string]any{"email": email, "role": role})
	return c.Redirect(dashboardPath(u.Role))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
