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
	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/handler"
	"github.com/noah-isme/fokus-go-api/internal/service"
)

type mockHeatmapService struct {
	matrix    dto.HeatmapResponse
	matrixErr error
	seek      dto.SeekResponse
	seekErr   error

	lastOverride *engagement.SessionMode
	setMode      engagement.SessionMode
	cleared      bool
}

func (m *mockHeatmapService) GetMatrix(_ context.Context, _ uint, override *engagement.SessionMode) (dto.HeatmapResponse, error) {
	m.lastOverride = override
	if m.matrixErr != nil {
		return dto.HeatmapResponse{}, m.matrixErr
	}
	return m.matrix, nil
}

func (m *mockHeatmapService) SeekOffset(context.Context, uint, string, int64) (dto.SeekResponse, error) {
	if m.seekErr != nil {
		return dto.SeekResponse{}, m.seekErr
	}
	return m.seek, nil
}

func (m *mockHeatmapService) SetOverride(_ context.Context, _ uint, mode engagement.SessionMode) error {
	m.setMode = mode
	return nil
}

func (m *mockHeatmapService) ClearOverride(context.Context, uint) error {
	m.cleared = true
	return nil
}

func (m *mockHeatmapService) Override(context.Context, uint) (engagement.SessionMode, bool) {
	return "", false
}

func newHeatmapApp(svc *mockHeatmapService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	h := handler.NewHeatmapHandler(svc, logger)
	api := app.Group("/api/v1")
	h.Register(api)
	h.RegisterProtected(api)
	return app
}

func TestHeatmapHandler_GetHeatmap(t *testing.T) {
	svc := &mockHeatmapService{matrix: dto.HeatmapResponse{
		SessionID: 5,
		Students:  []string{"Alice"},
		Cells:     []dto.HeatmapCellResponse{{Time: 1709287200000, Student: "Alice", State: 1}},
	}}
	app := newHeatmapApp(svc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, svc.lastOverride)

	var payload struct {
		Data dto.HeatmapResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Len(t, payload.Data.Cells, 1)
	require.Equal(t, "Alice", payload.Data.Cells[0].Student)
}

func TestHeatmapHandler_ModeQueryOverridesTimeline(t *testing.T) {
	svc := &mockHeatmapService{}
	app := newHeatmapApp(svc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap?mode=break")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, svc.lastOverride)
	require.Equal(t, engagement.ModeBreak, *svc.lastOverride)
}

func TestHeatmapHandler_RejectsUnknownMode(t *testing.T) {
	app := newHeatmapApp(&mockHeatmapService{})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap?mode=recess")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHeatmapHandler_Seek(t *testing.T) {
	svc := &mockHeatmapService{seek: dto.SeekResponse{Student: "Alice", Time: 1709287203000, OffsetSeconds: 3}}
	app := newHeatmapApp(svc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap/seek?student=Alice&time=1709287203000")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.SeekResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, 3.0, payload.Data.OffsetSeconds)
}

func TestHeatmapHandler_SeekValidation(t *testing.T) {
	app := newHeatmapApp(&mockHeatmapService{})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap/seek?time=1709287203000")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap/seek?student=Alice")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHeatmapHandler_SeekUnknownStudent(t *testing.T) {
	svc := &mockHeatmapService{seekErr: service.ErrStudentUnknown}
	app := newHeatmapApp(svc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/5/heatmap/seek?student=Nobody&time=1709287203000")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHeatmapHandler_SetAndClearOverride(t *testing.T) {
	svc := &mockHeatmapService{}
	app := newHeatmapApp(svc)

	body, err := json.Marshal(dto.ModeOverrideRequest{Mode: "exam"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/sessions/5/mode-override", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, engagement.ModeExam, svc.setMode)

	resp = performRequest(t, app, http.MethodDelete, "/api/v1/sessions/5/mode-override")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.cleared)
}
