package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

type OwnerHandler struct {
	Market *services.MarketplaceService
}

// GET /owner
func (h *OwnerHandler) Dashboard(c *fiber.Ctx) error {
	u := sessionUser(c)
	listings, err := h.Market.OwnerListings(u.ID, domain.TypeTractor)
	if err != nil {
		applog.Error(c, "owner.listings.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger votre parc"})
	}
	requests, err := h.Market.ProviderRequests(u.ID, domain.TypeTractor)
	if err != nil {
		applog.Error(c, "owner.requests.fail", err, nil)
	}
	return render(c, "owner_dashboard", fiber.Map{"Listings": listings, "Requests": requests})
}

// POST /owner/listings
func (h *OwnerHandler) Publish(c *fiber.Ctx) error {
	return publishListing(c, h.Market, domain.TypeTractor, "/owner")
}

// POST /owner/requests/:id/status
func (h *OwnerHandler) ModerateRequest(c *fiber.Ctx) error {
	return moderateRequest(c, h.Market, "/owner")
}
