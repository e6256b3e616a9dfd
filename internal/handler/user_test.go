package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"cloudtouch-gate/internal/database"
	"cloudtouch-gate/internal/middleware"
	"cloudtouch-gate/internal/model"
	"cloudtouch-gate/internal/service"
	"cloudtouch-gate/internal/store"
	"cloudtouch-gate/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAdminTestApp(t *testing.T) *fiber.App {
	kv, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	db := database.OpenTest()
	t.Cleanup(func() { database.CloseTest(db) })

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.AdminUser{
		Username:  "admin",
		Password:  string(hashed),
		Email:     "admin@example.com",
		Role:      "admin",
		Status:    "active",
		CreatedAt: time.Now(),
	}).Error)

	verifier := util.NewSignatureVerifier("test-secret")
	access := service.NewAccessService(kv, nil, "CloudTouch Tool")
	usage := service.NewUsageService(kv, verifier, nil)
	h := New(access, usage, verifier, db, nil)

	app := fiber.New()
	app.Post("/api/v1/auth/login", h.HandleUserLogin)
	app.Get("/api/v1/auth/info", middleware.Auth(), h.HandleUserInfo)

	admin := app.Group("/api/v1/admin", middleware.Auth(), middleware.AdminOnly(db))
	admin.Get("/access", h.HandleList)
	admin.Post("/access/grant", h.HandleGrant)
	admin.Post("/access/revoke", h.HandleRevoke)
	admin.Get("/access/statistics", h.HandleStatistics)
	return app
}

func loginAdmin(t *testing.T, app *fiber.App) string {
	resp, body := postJSON(t, app, "/api/v1/auth/login",
		fiber.Map{"username": "admin", "password": "admin"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func authedRequest(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := make(map[string]interface{})
	if len(content) > 0 {
		require.NoError(t, json.Unmarshal(content, &decoded))
	}
	return resp, decoded
}

func TestAdminLoginAndInfo(t *testing.T) {
	app := newAdminTestApp(t)

	// Wrong password is rejected.
	resp, _ := postJSON(t, app, "/api/v1/auth/login",
		fiber.Map{"username": "admin", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := loginAdmin(t, app)

	resp, body := authedRequest(t, app, "GET", "/api/v1/auth/info", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", body["username"])

	// No token, no info.
	resp, _ = authedRequest(t, app, "GET", "/api/v1/auth/info", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminGrantRevoke(t *testing.T) {
	app := newAdminTestApp(t)
	token := loginAdmin(t, app)

	resp, body := authedRequest(t, app, "POST", "/api/v1/admin/access/grant", token,
		fiber.Map{"user_id": "u1", "type": "Premium"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "granted", body["status"])

	// The granting admin lands in granted_by.
	resp, body = authedRequest(t, app, "GET", "/api/v1/admin/access", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	users := body["users"].(map[string]interface{})
	rec := users["u1"].(map[string]interface{})
	assert.Equal(t, "admin", rec["granted_by"])

	resp, body = authedRequest(t, app, "POST", "/api/v1/admin/access/revoke", token,
		fiber.Map{"user_id": "u1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "revoked", body["status"])

	// Admin routes reject unauthenticated callers outright.
	resp, _ = authedRequest(t, app, "POST", "/api/v1/admin/access/grant", "",
		fiber.Map{"user_id": "u2"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminStatistics(t *testing.T) {
	app := newAdminTestApp(t)
	token := loginAdmin(t, app)

	_, body := authedRequest(t, app, "POST", "/api/v1/admin/access/grant", token,
		fiber.Map{"user_id": "u1", "type": "Premium"})
	require.Equal(t, "granted", body["status"])

	resp, body := authedRequest(t, app, "GET", "/api/v1/admin/access/statistics", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_records"])
	assert.Equal(t, float64(1), body["unbound_records"])
}
