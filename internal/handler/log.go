package handler

import (
	"strconv"

	"cloudtouch-gate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleGetLogs pages through the operation log, newest first.
func (h *Handler) HandleGetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	logs, total, err := service.GetOperationLogs(h.db, page, pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load logs",
		})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
		"page":  page,
	})
}
