// Package handler maps the HTTP surface onto the gate's services. Two
// trust levels exist side by side: bot-originated calls signed with the
// shared HMAC secret, and the JWT-authenticated admin channel.
package handler

import (
	"cloudtouch-gate/internal/service"
	"cloudtouch-gate/internal/util"

	"gorm.io/gorm"
)

type Handler struct {
	access   *service.AccessService
	usage    *service.UsageService
	verifier *util.SignatureVerifier
	db       *gorm.DB
	sheets   *service.SheetSyncService
}

func New(access *service.AccessService, usage *service.UsageService, verifier *util.SignatureVerifier, db *gorm.DB, sheets *service.SheetSyncService) *Handler {
	return &Handler{
		access:   access,
		usage:    usage,
		verifier: verifier,
		db:       db,
		sheets:   sheets,
	}
}
