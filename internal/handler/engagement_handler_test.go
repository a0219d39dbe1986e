package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/handler"
)

type mockEngagementService struct {
	response dto.StudentEngagementResponse
	err      error

	lastSessionID uint
	lastStudentID uint
}

func (m *mockEngagementService) GetStudentAggregate(_ context.Context, sessionID, studentID uint) (dto.StudentEngagementResponse, error) {
	m.lastSessionID = sessionID
	m.lastStudentID = studentID
	if m.err != nil {
		return dto.StudentEngagementResponse{}, m.err
	}
	return m.response, nil
}

type mockAdvisorService struct {
	response dto.RecommendationResponse
	err      error
	lastNote string
}

func (m *mockAdvisorService) Recommend(_ context.Context, sessionID, studentID uint, note string) (dto.RecommendationResponse, error) {
	m.lastNote = note
	if m.err != nil {
		return dto.RecommendationResponse{}, m.err
	}
	return m.response, nil
}

func newEngagementApp(engagementSvc *mockEngagementService, advisorSvc *mockAdvisorService) *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	handler.NewEngagementHandler(engagementSvc, advisorSvc, logger).Register(app.Group("/api/v1"))
	return app
}

func TestEngagementHandler_GetEngagement(t *testing.T) {
	svc := &mockEngagementService{response: dto.StudentEngagementResponse{
		SessionID: 3,
		StudentID: 9,
		Overall:   dto.ModeTallyResponse{Engaged: 4, Disengaged: 1, EngagedPercent: 80},
	}}
	app := newEngagementApp(svc, &mockAdvisorService{})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/3/students/9/engagement")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                          `json:"success"`
		Data    dto.StudentEngagementResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, 4, payload.Data.Overall.Engaged)
	require.Equal(t, uint(3), svc.lastSessionID)
	require.Equal(t, uint(9), svc.lastStudentID)
}

func TestEngagementHandler_BadIdentifiers(t *testing.T) {
	app := newEngagementApp(&mockEngagementService{}, &mockAdvisorService{})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/abc/students/9/engagement")
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEngagementHandler_ServiceError(t *testing.T) {
	svc := &mockEngagementService{err: errors.New("boom")}
	app := newEngagementApp(svc, &mockAdvisorService{})

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/3/students/9/engagement")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestEngagementHandler_RecommendationsForwardNote(t *testing.T) {
	advisorSvc := &mockAdvisorService{response: dto.RecommendationResponse{Suggestions: []string{"rotate groups"}}}
	app := newEngagementApp(&mockEngagementService{}, advisorSvc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/3/students/9/recommendations?note=restless")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "restless", advisorSvc.lastNote)

	var payload struct {
		Data dto.RecommendationResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, []string{"rotate groups"}, payload.Data.Suggestions)
}

func TestEngagementHandler_RecommendationsUpstreamError(t *testing.T) {
	advisorSvc := &mockAdvisorService{err: errors.New("model unavailable")}
	app := newEngagementApp(&mockEngagementService{}, advisorSvc)

	resp := performRequest(t, app, http.MethodGet, "/api/v1/sessions/3/students/9/recommendations")
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
