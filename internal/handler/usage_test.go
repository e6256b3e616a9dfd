package handler

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUsageLog(t *testing.T) {
	app, verifier := newTestApp(t)

	resp, body := postJSON(t, app, "/api/v1/usage/log", fiber.Map{
		"user_id":   "u1",
		"signature": verifier.Sign("u1"),
		"device_info": fiber.Map{
			"fingerprint": "fp-1",
			"ip":          "1.2.3.4",
			"hostname":    "box-1",
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "logged", body["status"])
}

func TestHandleUsageLogRejections(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		name       string
		body       fiber.Map
		wantStatus int
	}{
		{
			name:       "missing_user_id",
			body:       fiber.Map{"signature": "whatever"},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "missing_signature",
			body:       fiber.Map{"user_id": "u1"},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "bad_signature",
			body:       fiber.Map{"user_id": "u1", "signature": "ffff"},
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, app, "/api/v1/usage/log", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
