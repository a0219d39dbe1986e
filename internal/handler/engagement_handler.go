package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/service"
	"github.com/noah-isme/fokus-go-api/internal/utils"
)

// EngagementHandler exposes per-student engagement aggregates and advisor
// recommendations.
type EngagementHandler struct {
	engagement service.EngagementService
	advisor    service.AdvisorService
	logger     zerolog.Logger
}

// NewEngagementHandler creates a new handler instance.
func NewEngagementHandler(engagementSvc service.EngagementService, advisorSvc service.AdvisorService, logger zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagement: engagementSvc,
		advisor:    advisorSvc,
		logger:     logger.With().Str("component", "engagement_handler").Logger(),
	}
}

// Register attaches the engagement endpoints.
func (h *EngagementHandler) Register(router fiber.Router) {
	router.Get("/sessions/:sessionID/students/:studentID/engagement", h.getEngagement)
	router.Get("/sessions/:sessionID/students/:studentID/recommendations", h.getRecommendations)
}

func (h *EngagementHandler) getEngagement(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	aggregate, err := h.engagement.GetStudentAggregate(c.Context(), sessionID, studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).
			Uint("session_id", sessionID).
			Uint("student_id", studentID).
			Msg("failed to aggregate engagement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to aggregate engagement")
	}

	return utils.SendSuccess(c, "engagement aggregated", aggregate)
}

func (h *EngagementHandler) getRecommendations(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	recommendation, err := h.advisor.Recommend(c.Context(), sessionID, studentID, c.Query("note"))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).
			Uint("session_id", sessionID).
			Uint("student_id", studentID).
			Msg("failed to generate recommendation")
		return utils.SendError(c, fiber.StatusBadGateway, "failed to generate recommendation")
	}

	return utils.SendSuccess(c, "recommendation generated", recommendation)
}
