package main

import (
	"fmt"
	"log"

	"cloudtouch-gate/internal/config"
	"cloudtouch-gate/internal/database"
	"cloudtouch-gate/internal/handler"
	"cloudtouch-gate/internal/middleware"
	"cloudtouch-gate/internal/service"
	"cloudtouch-gate/internal/store"
	"cloudtouch-gate/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading configuration failed:", err)
	}

	util.InitJWT(cfg.JWTSecret)

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("opening database failed:", err)
	}

	var kv store.KV
	switch cfg.StoreBackend {
	case "sqlite":
		kv, err = store.NewSQLiteKV(db)
	default:
		kv, err = store.NewFileKV(cfg.DataDir)
	}
	if err != nil {
		log.Fatal("opening store failed:", err)
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.WebhookURL != "" {
		notifier = service.NewWebhookNotifier(cfg.WebhookURL)
	}

	verifier := util.NewSignatureVerifier(cfg.APISecret)
	if cfg.APISecret == "" {
		log.Println("CLOUDTOUCH_API_SECRET not set, using the non-production default")
	}

	sheets, err := service.NewSheetSyncService(cfg.SheetSyncEnabled, cfg.SheetCredentialPath, cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Fatal("initializing sheet sync failed:", err)
	}

	access := service.NewAccessService(kv, notifier, cfg.DefaultAccessType)
	usage := service.NewUsageService(kv, verifier, notifier)
	h := handler.New(access, usage, verifier, db, sheets)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", h.HandleHealth)

	api := app.Group("/api/v1")

	// Bot/client channel: HMAC-signed where mutating.
	api.Post("/access/check", h.HandleAccessCheck)
	api.Post("/access/update", h.HandleAccessUpdate)
	api.Post("/usage/log", h.HandleUsageLog)

	// Admin channel.
	auth := api.Group("/auth")
	auth.Post("/register", h.HandleUserRegister)
	auth.Post("/login", h.HandleUserLogin)
	auth.Get("/info", middleware.Auth(), h.HandleUserInfo)
	auth.Post("/change-password", middleware.Auth(), h.HandleChangePassword)
	auth.Get("/login-logs", middleware.Auth(), h.HandleLoginLogs)

	admin := api.Group("/admin", middleware.Auth(), middleware.AdminOnly(db))
	admin.Get("/access", h.HandleList)
	admin.Post("/access/grant", h.HandleGrant)
	admin.Post("/access/revoke", h.HandleRevoke)
	admin.Post("/access/scan", h.HandleScan)
	admin.Get("/access/statistics", h.HandleStatistics)
	admin.Post("/access/export", h.HandleExport)
	admin.Get("/usage/:userID", h.HandleGetUsage)
	admin.Get("/logs", h.HandleGetLogs)

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.Port)))
}
