package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/handler"
	"github.com/noah-isme/fokus-go-api/internal/middleware"
	"github.com/noah-isme/fokus-go-api/internal/models"
	"github.com/noah-isme/fokus-go-api/internal/service"
)

type mockSessionService struct {
	change   models.ModeChange
	timeline dto.ModeTimelineResponse
	err      error

	lastRequest dto.ModeChangeRequest
}

func (m *mockSessionService) DeclareMode(_ context.Context, _ uint, req dto.ModeChangeRequest) (models.ModeChange, error) {
	m.lastRequest = req
	if m.err != nil {
		return models.ModeChange{}, m.err
	}
	return m.change, nil
}

func (m *mockSessionService) GetTimeline(context.Context, uint) (dto.ModeTimelineResponse, error) {
	if m.err != nil {
		return dto.ModeTimelineResponse{}, m.err
	}
	return m.timeline, nil
}

func newSessionApp(svc *mockSessionService, role string) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)

	api := app.Group("/api/v1")
	if role != "" {
		api = app.Group("/api/v1", func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		})
	}

	h := handler.NewSessionHandler(svc, logger)
	h.Register(api)
	h.RegisterProtected(api.Group("", middleware.RequireRole("teacher", "admin")))
	return app
}

func TestSessionHandler_GetTimeline(t *testing.T) {
	svc := &mockSessionService{timeline: dto.ModeTimelineResponse{
		SessionID:   4,
		Events:      []dto.ModeEventResponse{{Time: 1709287200000, Mode: "teaching"}},
		DefaultMode: "teaching",
		Override:    "break",
	}}
	app := newSessionApp(svc, "")

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/4/modes")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.ModeTimelineResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Len(t, payload.Data.Events, 1)
	require.Equal(t, "break", payload.Data.Override)
}

func TestSessionHandler_DeclareMode(t *testing.T) {
	svc := &mockSessionService{change: models.ModeChange{SessionID: 4, TimeKey: "1709287260000", Mode: "discussion"}}
	app := newSessionApp(svc, "teacher")

	body, err := json.Marshal(dto.ModeChangeRequest{Mode: "discussion", TimeKey: "1709287260000"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/4/modes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "discussion", svc.lastRequest.Mode)

	var payload struct {
		Data dto.ModeEventResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, int64(1709287260000), payload.Data.Time)
	require.Equal(t, "discussion", payload.Data.Mode)
}

func TestSessionHandler_DeclareModeForbiddenForStudents(t *testing.T) {
	svc := &mockSessionService{}
	app := newSessionApp(svc, "student")

	body, err := json.Marshal(dto.ModeChangeRequest{Mode: "discussion"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/4/modes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, svc.lastRequest.Mode)
}

func TestSessionHandler_DeclareModeRejectsUnknownMode(t *testing.T) {
	svc := &mockSessionService{err: service.ErrInvalidMode}
	app := newSessionApp(svc, "teacher")

	body, err := json.Marshal(map[string]string{"mode": "recess"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/4/modes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
