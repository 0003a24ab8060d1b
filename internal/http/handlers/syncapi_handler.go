package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Uchiwa75567/TerraLinkk/internal/domain"
	applog "github.com/Uchiwa75567/TerraLinkk/internal/log"
	"github.com/Uchiwa75567/TerraLinkk/internal/repos"
)

// SyncAPIHandler serves the remote side of the mirror contract, so one
// instance can act as the sync endpoint for others. Full-document read and
// replace only; no partial updates.
type SyncAPIHandler struct {
	Store repos.Store
}

// GET /api/db
func (h *SyncAPIHandler) Get(c *fiber.Ctx) error {
	doc, err := h.Store.Load()
	if err != nil {
		applog.Error(c, "syncapi.load.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "could not load document"})
	}
	return c.JSON(doc)
}

// PUT /api/db
func (h *SyncAPIHandler) Put(c *fiber.Ctx) error {
	var doc domain.Document
	if err := json.Unmarshal(c.Body(), &doc); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid json"})
	}
	if doc.Users == nil || doc.Marketplace.Listings == nil || doc.Marketplace.Requests == nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid document shape"})
	}
	if err := h.Store.Replace(doc); err != nil {
		if errors.Is(err, repos.ErrStorageQuota) {
			applog.Error(c, "syncapi.replace.quota", err, nil)
			return c.Status(fiber.StatusInsufficientStorage).JSON(fiber.Map{"error": err.Error()})
		}
		applog.Error(c, "syncapi.replace.fail", err, nil)
		return c.Status(500).JSON(fiber.Map{"error": "could not store document"})
	}
	applog.Audit(c, "syncapi.replace", map[string]any{"bytes": len(c.Body())})
	return c.JSON(fiber.Map{"ok": true})
}
