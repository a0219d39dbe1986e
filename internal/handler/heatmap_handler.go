package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/service"
	"github.com/noah-isme/fokus-go-api/internal/utils"
)

// HeatmapHandler exposes the densified session heatmap, seek translation and
// the visualization mode override.
type HeatmapHandler struct {
	heatmaps service.HeatmapService
	logger   zerolog.Logger
}

// NewHeatmapHandler creates a new handler instance.
func NewHeatmapHandler(heatmaps service.HeatmapService, logger zerolog.Logger) *HeatmapHandler {
	return &HeatmapHandler{
		heatmaps: heatmaps,
		logger:   logger.With().Str("component", "heatmap_handler").Logger(),
	}
}

// Register attaches the public heatmap endpoints.
func (h *HeatmapHandler) Register(router fiber.Router) {
	router.Get("/sessions/:sessionID/heatmap", h.getHeatmap)
	router.Get("/sessions/:sessionID/heatmap/seek", h.seek)
}

// RegisterProtected attaches the instructor-only override endpoints.
func (h *HeatmapHandler) RegisterProtected(router fiber.Router) {
	router.Put("/sessions/:sessionID/mode-override", h.setOverride)
	router.Delete("/sessions/:sessionID/mode-override", h.clearOverride)
}

func (h *HeatmapHandler) getHeatmap(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var override *engagement.SessionMode
	if raw := strings.TrimSpace(c.Query("mode")); raw != "" {
		mode, ok := engagement.ParseSessionMode(raw)
		if !ok {
			return utils.SendError(c, fiber.StatusBadRequest, "unrecognized mode")
		}
		override = &mode
	}

	response, err := h.heatmaps.GetMatrix(c.Context(), sessionID, override)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to build heatmap")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build heatmap")
	}

	return utils.SendSuccess(c, "heatmap built", response)
}

func (h *HeatmapHandler) seek(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student := strings.TrimSpace(c.Query("student"))
	if student == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "missing student")
	}

	at, present, err := parseQueryInt64(c, "time")
	if err != nil || !present {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid time")
	}

	seek, err := h.heatmaps.SeekOffset(c.Context(), sessionID, student, at)
	switch {
	case errors.Is(err, service.ErrStudentUnknown):
		return utils.SendError(c, fiber.StatusNotFound, "student not present in heatmap")
	case errors.Is(err, engagement.ErrNoData):
		return utils.SendError(c, fiber.StatusNotFound, "no heatmap data for session")
	case err != nil:
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to resolve seek offset")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve seek offset")
	}

	return utils.SendSuccess(c, "seek offset resolved", seek)
}

func (h *HeatmapHandler) setOverride(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ModeOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	mode, ok := engagement.ParseSessionMode(req.Mode)
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "unrecognized mode")
	}

	if err := h.heatmaps.SetOverride(c.Context(), sessionID, mode); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to set mode override")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to set mode override")
	}

	return utils.SendSuccess(c, "mode override set", fiber.Map{"session_id": sessionID, "mode": string(mode)})
}

func (h *HeatmapHandler) clearOverride(c *fiber.Ctx) error {
	sessionID, err := parseUintParam(c, "sessionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.heatmaps.ClearOverride(c.Context(), sessionID); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("session_id", sessionID).Msg("failed to clear mode override")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear mode override")
	}

	return utils.SendSuccess(c, "mode override cleared", fiber.Map{"session_id": sessionID})
}
