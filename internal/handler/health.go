package handler

import "github.com/gofiber/fiber/v2"

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "online"})
}
