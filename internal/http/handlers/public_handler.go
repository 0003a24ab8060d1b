package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
)

type PublicHandler struct {
	Market *services.MarketplaceService
}

// GET /
func (h *PublicHandler) Landing(c *fiber.Ctx) error {
	feed, err := h.Market.ApprovedAnnouncements()
	if err != nil {
		applog.Error(c, "landing.feed.fail", err, nil)
		feed = nil
	}
	if len(feed) > 6 {
		feed = feed[:6]
	}
	stats, err := h.Market.Stats()
	if err != nil {
		applog.Error(c, "landing.stats.fail", err, nil)
	}
	return render(c, "landing", fiber.Map{"Announcements": feed, "Stats": stats})
}

// GET /api/v1/announcements
func (h *PublicHandler) Announcements(c *fiber.Ctx) error {
	feed, err := h.Market.ApprovedAnnouncements()
	if err != nil {
		applog.Error(c, "announcements.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "could not load announcements"})
	}
	return c.JSON(feed)
}
