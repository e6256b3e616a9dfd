package handler

import (
	"strings"

	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/service"

	"github.com/gofiber/fiber/v2"
)

// accessRequest carries every field the access endpoints accept. The
// user_id/discord_id and details/type aliases are kept for the clients
// that predate this service.
type accessRequest struct {
	UserID       string `json:"user_id"`
	DiscordID    string `json:"discord_id"`
	IP           string `json:"ip"`
	Action       string `json:"action"`
	List         bool   `json:"list"`
	Type         string `json:"type"`
	Details      string `json:"details"`
	DownloadLink string `json:"download_link"`
	GrantedBy    string `json:"granted_by"`
	Signature    string `json:"signature"`
}

func (r *accessRequest) userID() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.DiscordID
}

func (r *accessRequest) accessType() string {
	if r.Details != "" {
		return r.Details
	}
	return r.Type
}

// HandleAccessCheck is the low-trust client endpoint. Besides the plain
// verification it multiplexes the list and scan actions, matching the
// original wire protocol. Verification itself needs no signature: the
// only mutation it can cause is the one-time IP bind. When a signature
// is supplied anyway it must verify.
func (h *Handler) HandleAccessCheck(c *fiber.Ctx) error {
	req := new(accessRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	action := strings.ToLower(strings.TrimSpace(req.Action))

	if action == "scan" || action == "scan_check" {
		return h.runScan(c, req.userID())
	}

	if action == "list" || req.List {
		return c.JSON(fiber.Map{"users": h.access.List(strings.TrimSpace(req.Type))})
	}

	userID := req.userID()
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}

	if req.Signature != "" && !h.verifier.Verify(userID, req.Signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	return c.JSON(h.access.Verify(userID, req.IP))
}

// HandleAccessUpdate is the bot mutation endpoint: grant or revoke,
// authenticated by an HMAC signature over the user identifier.
func (h *Handler) HandleAccessUpdate(c *fiber.Ctx) error {
	req := new(accessRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	userID := strings.TrimSpace(req.userID())
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if userID == "" || action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id or action",
		})
	}

	if !h.verifier.Verify(userID, req.Signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	switch action {
	case "grant":
		return h.doGrant(c, "bot", userID, req.accessType(), req.DownloadLink, req.GrantedBy)
	case "revoke":
		return h.doRevoke(c, "bot", userID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid action",
		})
	}
}

// HandleGrant is the admin-channel grant. The acting admin becomes the
// record's granted_by.
func (h *Handler) HandleGrant(c *fiber.Ctx) error {
	req := new(accessRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	userID := strings.TrimSpace(req.userID())
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}

	actor := h.adminUsername(c)
	grantedBy := req.GrantedBy
	if grantedBy == "" {
		grantedBy = actor
	}
	return h.doGrant(c, actor, userID, req.accessType(), req.DownloadLink, grantedBy)
}

func (h *Handler) HandleRevoke(c *fiber.Ctx) error {
	req := new(accessRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	userID := strings.TrimSpace(req.userID())
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}
	return h.doRevoke(c, h.adminUsername(c), userID)
}

func (h *Handler) doGrant(c *fiber.Ctx, actor, userID, accessType, downloadLink, grantedBy string) error {
	status, err := h.access.Grant(userID, accessType, downloadLink, grantedBy)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store access record",
		})
	}

	if status == service.StatusGranted {
		service.LogOperation(h.db, actor, "grant", userID, fiber.Map{"type": accessType})
		if h.sheets != nil {
			if rec, ok := h.access.List("")[userID]; ok {
				go h.sheets.SyncRecord(&rec)
			}
		}
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"user_id": userID,
		"action":  "grant",
	})
}

func (h *Handler) doRevoke(c *fiber.Ctx, actor, userID string) error {
	status, err := h.access.Revoke(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to delete access record",
		})
	}

	if status == service.StatusRevoked {
		service.LogOperation(h.db, actor, "revoke", userID, nil)
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"user_id": userID,
		"action":  "revoke",
	})
}

// HandleList returns all access records, optionally filtered by type.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"users": h.access.List(c.Query("type"))})
}

// HandleScan runs the forensic identifier lookup for admins.
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	req := new(accessRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	return h.runScan(c, req.userID())
}

func (h *Handler) runScan(c *fiber.Ctx, needle string) error {
	if needle == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing user_id",
		})
	}

	result := h.access.Scan(needle)
	return c.JSON(fiber.Map{
		"status":          "ok",
		"found_count":     result.FoundCount,
		"users":           result.Users,
		"matched_sources": result.MatchedSources,
	})
}

// HandleStatistics summarizes the store for the admin dashboard.
func (h *Handler) HandleStatistics(c *fiber.Ctx) error {
	return c.JSON(h.access.Statistics())
}

// HandleExport pushes the full record listing to the configured sheet.
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	if h.sheets == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "sheet sync is not configured",
		})
	}

	records := h.access.List("")
	if err := h.sheets.ExportAll(records); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "export failed",
		})
	}

	service.LogOperation(h.db, h.adminUsername(c), "export", "", fiber.Map{"count": len(records)})
	return c.JSON(fiber.Map{"status": "exported", "count": len(records)})
}

func (h *Handler) adminUsername(c *fiber.Ctx) string {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return "bot"
	}

	var user model.AdminUser
	if err := h.db.First(&user, userID).Error; err != nil {
		return "unknown"
	}
	return user.Username
}
