package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
	"github.com/Uchiwa75567/TerraLinkk/internal/validate"
)

type ProfilesHandler struct {
	Profiles *services.ProfileService
}

// GET /profiles
func (h *ProfilesHandler) List(c *fiber.Ctx) error {
	profiles, err := h.Profiles.PublicProfiles()
	if err != nil {
		applog.Error(c, "profiles.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les profils"})
	}
	type row struct {
		ID, Name, Avatar, Label, Localisation string
	}
	rows := make([]row, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, row{
			ID:           p.ID,
			Name:         p.Name,
			Avatar:       p.Avatar,
			Label:        services.RoleLabel(p.Role),
			Localisation: p.Profile["localisation"],
		})
	}
	return render(c, "profiles", fiber.Map{"Profiles": rows})
}

// GET /profiles/:id
func (h *ProfilesHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Profil introuvable"})
	}
	p, err := h.Profiles.PublicProfileByID(id)
	if err != nil {
		applog.Error(c, "profiles.detail.fail", err, map[string]any{"profile_id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le profil"})
	}
	if p == nil {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Profil introuvable"})
	}
	return render(c, "profile_detail", fiber.Map{"Profile": p, "Label": services.RoleLabel(p.Role)})
}
