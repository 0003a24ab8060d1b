package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	"github.com/Uchiwa75567/TerraLinkk/internal/imaging"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/services"
	"github.com/Uchiwa75567/TerraLinkk/internal/validate"
)

type FarmerHandler struct {
	Market  *services.MarketplaceService
	Watcher *services.NoticeWatcher
}

func sessionUser(c *fiber.Ctx) *domain.SessionUser {
	u, _ := c.Locals("user").(*domain.SessionUser)
	return u
}

// GET /farmer
func (h *FarmerHandler) Dashboard(c *fiber.Ctx) error {
	u := sessionUser(c)

	typ, _ := validate.ListingType(c.Query("type"))
	resources, err := h.Market.ApprovedResources(typ)
	if err != nil {
		applog.Error(c, "farmer.resources.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Impossible de charger les ressources"})
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := resources[:0]
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Name), q) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	myRequests, err := h.Market.FarmerRequests(u.ID)
	if err != nil {
		applog.Error(c, "farmer.requests.fail", err, nil)
	}
	myNotices, err := h.Market.FarmerNotices(u.ID)
	if err != nil {
		applog.Error(c, "farmer.notices.fail", err, nil)
	}
	feed, err := h.Market.ApprovedAnnouncements()
	if err != nil {
		applog.Error(c, "farmer.feed.fail", err, nil)
	}
	if len(feed) > 6 {
		feed = feed[:6]
	}

	// Newly approved notices since the last visit, surfaced once each.
	approvals, err := h.Watcher.Check(u.ID)
	if err != nil {
		applog.Error(c, "farmer.watch.fail", err, nil)
	}

	return render(c, "farmer_dashboard", fiber.Map{
		"Resources":     resources,
		"MyRequests":    myRequests,
		"MyNotices":     myNotices,
		"Announcements": feed,
		"Approvals":     approvals,
		"Query":         c.Query("q"),
		"Type":          string(typ),
	})
}

// POST /farmer/requests
func (h *FarmerHandler) CreateRequest(c *fiber.Ctx) error {
	u := sessionUser(c)
	listingID, ok := validate.ID(c.FormValue("listing_id"))
	if !ok {
		return c.Status(400).SendString("invalid listing id")
	}
	req, err := h.Market.CreateRequest(services.RequestInput{
		ListingID:  listingID,
		FarmerID:   u.ID,
		FarmerName: u.Name,
	})
	if err != nil {
		applog.Error(c, "farmer.request.create.fail", err, map[string]any{"listing_id": listingID})
		return c.Status(400).SendString(services.UserMessage(err))
	}
	applog.Audit(c, "farmer.request.create", map[string]any{"request_id": req.ID, "listing_id": listingID})
	return c.Redirect("/farmer")
}

// POST /farmer/notices
func (h *FarmerHandler) CreateNotice(c *fiber.Ctx) error {
	u := sessionUser(c)
	title, okTitle := validate.Name(c.FormValue("title"))
	location := strings.TrimSpace(c.FormValue("location"))
	mainCrop := strings.TrimSpace(c.FormValue("main_crop"))
	details := strings.TrimSpace(c.FormValue("details"))
	if !okTitle || location == "" || mainCrop == "" {
		return c.Status(400).Render("farmer_dashboard", fiber.Map{"Err": "Titre, localisation et culture principale sont requis."})
	}

	photo := formPhotoDataURL(c, "farm_photo")

	notice, err := h.Market.CreateFarmerNotice(services.NoticeInput{
		FarmerID:   u.ID,
		FarmerName: u.Name,
		Title:      title,
		Details:    details,
		Location:   location,
		MainCrop:   mainCrop,
		FarmPhoto:  photo,
	})
	if err != nil {
		applog.Error(c, "farmer.notice.create.fail", err, nil)
		return c.Status(400).SendString(services.UserMessage(err))
	}
	applog.Audit(c, "farmer.notice.create", map[string]any{"notice_id": notice.ID})
	return c.Redirect("/farmer")
}

// formPhotoDataURL optimizes an optional uploaded photo into a data URL.
// Upload problems degrade to no photo rather than failing the whole form.
func formPhotoDataURL(c *fiber.Ctx, field string) string {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return ""
	}
	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()
	dataURL, err := imaging.OptimizeToDataURL(f, imaging.Options{})
	if err != nil {
		applog.Error(c, "photo.optimize.fail", err, map[string]any{"file": fh.Filename})
		return ""
	}
	return dataURL
}
