package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
	"github.com/Uchiwa75567/TerraLinkk/internal/validate"
)

type AdminHandler struct {
	Market *services.MarketplaceService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Market.Stats()
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger le tableau de bord"})
	}
	pendingListings, err := h.Market.PendingListings()
	if err != nil {
		applog.Error(c, "admin.listings.fail", err, nil)
	}
	pendingNotices, err := h.Market.PendingFarmerNotices()
	if err != nil {
		applog.Error(c, "admin.notices.fail", err, nil)
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":           stats,
		"PendingListings": pendingListings,
		"PendingNotices":  pendingNotices,
	})
}

// POST /admin/listings/:id/status
func (h *AdminHandler) ModerateListing(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.ModerationStatus(c.FormValue("status"))
	if !okID || !okStatus {
		return c.Status(400).SendString("missing id or status")
	}
	changed, err := h.Market.UpdateListingStatus(id, status)
	if err != nil {
		applog.Error(c, "admin.listing.moderate.fail", err, map[string]any{"listing_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.listing.moderate", map[string]any{"listing_id": id, "status": status, "changed": changed})
	return c.Redirect("/admin")
}

// POST /admin/notices/:id/status
func (h *AdminHandler) ModerateNotice(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	status, okStatus := validate.ModerationStatus(c.FormValue("status"))
	if !okID || !okStatus {
		return c.Status(400).SendString("missing id or status")
	}
	changed, err := h.Market.UpdateFarmerNoticeStatus(id, status)
	if err != nil {
		applog.Error(c, "admin.notice.moderate.fail", err, map[string]any{"notice_id": id})
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.notice.moderate", map[string]any{"notice_id": id, "status": status, "changed": changed})
	return c.Redirect("/admin")
}
