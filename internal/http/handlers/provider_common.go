package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
	"github.com/Uchiwa75567/TerraLinkk/internal/validate"
)

// publishListing backs both the seller (semence) and owner (tracteur) forms;
// only the listing type differs.
func publishListing(c *fiber.Ctx, market *services.MarketplaceService, typ domain.ListingType, redirect string) error {
	u := sessionUser(c)
	name, okName := validate.Name(c.FormValue("name"))
	price := strings.TrimSpace(c.FormValue("price"))
	location := strings.TrimSpace(c.FormValue("location"))
	if !okName || price == "" || location == "" {
		return c.Status(400).SendString("nom, tarif et localisation sont requis")
	}

	var stock *int
	if s := strings.TrimSpace(c.FormValue("stock")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			stock = &n
		}
	}

	listing, err := market.CreateListing(services.ListingInput{
		Type:      typ,
		Name:      name,
		Price:     price,
		Location:  location,
		Img:       formPhotoDataURL(c, "photo"),
		Stock:     stock,
		OwnerID:   u.ID,
		OwnerName: u.Name,
	})
	if err != nil {
		applog.Error(c, "listing.create.fail", err, map[string]any{"type": typ})
		return c.Status(400).SendString(services.UserMessage(err))
	}
	applog.Audit(c, "listing.create", map[string]any{"listing_id": listing.ID, "type": typ})
	return c.Redirect(redirect)
}

// moderateRequest lets the owning provider (or an admin) approve or reject
// a resource request.
func moderateRequest(c *fiber.Ctx, market *services.MarketplaceService, redirect string) error {
	u := sessionUser(c)
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.ModerationStatus(c.FormValue("status"))
	if !okID || !okStatus {
		return c.Status(400).SendString("missing id or status")
	}

	req, err := market.FindRequest(id)
	if err != nil {
		applog.Error(c, "request.moderate.fail", err, map[string]any{"request_id": id})
		return c.Status(500).SendString("could not load request")
	}
	if req == nil {
		return c.Status(404).SendString("request not found")
	}
	if req.ProviderID != u.ID && u.Role != domain.RoleAdmin {
		applog.Security(c, "request.moderate.denied", map[string]any{"request_id": id})
		return c.Status(fiber.StatusForbidden).SendString("not your request")
	}

	changed, err := market.UpdateRequestStatus(id, status)
	if err != nil {
		applog.Error(c, "request.moderate.fail", err, map[string]any{"request_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "request.moderate", map[string]any{"request_id": id, "status": status, "changed": changed})
	return c.Redirect(redirect)
}
