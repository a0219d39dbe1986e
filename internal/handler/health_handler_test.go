package handler_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fokus-go-api/internal/config"
	"github.com/noah-isme/fokus-go-api/internal/handler"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Config{AppName: "FOKUS API", AppEnv: "test"}
	app := fiber.New()
	app.Get("/api/v1/health", handler.HealthCheck(cfg))

	resp := performRequest(t, app, http.MethodGet, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                   `json:"success"`
		Data    handler.HealthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "FOKUS API", payload.Data.Service)
	require.Equal(t, "test", payload.Data.Environment)
	require.False(t, payload.Data.Timestamp.IsZero())
}
