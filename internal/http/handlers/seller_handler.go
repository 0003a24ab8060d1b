package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

type SellerHandler struct {
	Market *services.MarketplaceService
}

// GET /seller
func (h *SellerHandler) Dashboard(c *fiber.Ctx) error {
	u := sessionUser(c)
	listings, err := h.Market.OwnerListings(u.ID, domain.TypeSeed)
	if err != nil {
		applog.Error(c, "seller.listings.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger vos annonces"})
	}
	requests, err := h.Market.ProviderRequests(u.ID, domain.TypeSeed)
	if err != nil {
		applog.Error(c, "seller.requests.fail", err, nil)
	}
	return render(c, "seller_dashboard", fiber.Map{"Listings": listings, "Requests": requests})
}

// POST /seller/listings
func (h *SellerHandler) Publish(c *fiber.Ctx) error {
	return publishListing(c, h.Market, domain.TypeSeed, "/seller")
}

// POST /seller/requests/:id/status
func (h *SellerHandler) ModerateRequest(c *fiber.Ctx) error {
	return moderateRequest(c, h.Market, "/seller")
}
