package handler

import (
	"errors"

	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/service"

	"github.com/gofiber/fiber/v2"
)

type usageRequest struct {
	UserID     string           `json:"user_id"`
	DiscordID  string           `json:"discord_id"`
	Signature  string           `json:"signature"`
	DeviceInfo model.DeviceInfo `json:"device_info"`
}

// HandleUsageLog records a signed client usage report. Reports are
// accepted whether or not the user holds access; tracking and gating
// are independent.
func (h *Handler) HandleUsageLog(c *fiber.Ctx) error {
	req := new(usageRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	userID := req.UserID
	if userID == "" {
		userID = req.DiscordID
	}
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}

	if err := h.usage.Record(userID, req.Signature, req.DeviceInfo); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid signature",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to record usage",
		})
	}

	return c.JSON(fiber.Map{"status": "logged"})
}

// HandleGetUsage returns one user's usage record for admins.
func (h *Handler) HandleGetUsage(c *fiber.Ctx) error {
	userID := c.Params("userID")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}

	rec, ok := h.usage.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no usage recorded",
		})
	}
	return c.JSON(rec)
}
