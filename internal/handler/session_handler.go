package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/service"
	"github.com/noah-isme/fokus-go-api/internal/utils"
)

// SessionHandler exposes the session mode timeline and mode declarations.
type SessionHandler struct {
	sessions service.SessionService
	logger   zerolog.Logger
}

// NewSessionHandler creates a new handler instance.
func NewSessionHandler(sessions service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register attaches the public timeline endpoint.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Get("/sessions/:sessionID/modes", h.getTimeline)
}

// RegisterProtected attaches the instructor-only declaration endpoint.
func (h *SessionHandler) RegisterProtected(router fiber.Router) {
	router.Post("/sessions/:sessionID/modes", h.declareMode)
}

func (h *SessionHandler) getTimeline(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	timeline, err := h.sessions.GetTimeline(c.Context(), sessionID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to load mode timeline")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load mode timeline")
	}

	return utils.SendSuccess(c, "mode timeline retrieved", timeline)
}

func (h *SessionHandler) declareMode(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ModeChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	change, err := h.sessions.DeclareMode(c.Context(), sessionID, req)
	switch {
	case errors.Is(err, service.ErrInvalidMode):
		return utils.SendError(c, fiber.StatusBadRequest, "unrecognized mode")
	case isValidationError(err):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "invalid mode declaration", err.Error())
	case err != nil:
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to declare mode")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to declare mode")
	}

	// The service already validated the key, so normalization cannot fail here.
	normalized, _ := engagement.NormalizeTimeKey(change.TimeKey)

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "mode declared", dto.ModeEventResponse{
		Time: normalized,
		Mode: change.Mode,
	})
}
