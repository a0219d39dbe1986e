package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/service"
)

// LiveHandler upgrades dashboard clients onto the heatmap websocket feed and
// keeps the poller running while a session has subscribers.
type LiveHandler struct {
	hub    *service.LiveHub
	poller *service.Poller
	logger zerolog.Logger
}

// NewLiveHandler creates a new handler instance.
func NewLiveHandler(hub *service.LiveHub, poller *service.Poller, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		hub:    hub,
		poller: poller,
		logger: logger.With().Str("component", "live_handler").Logger(),
	}
}

// Register attaches the websocket endpoint.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Use("/sessions/:sessionID/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/sessions/:sessionID/live", websocket.New(h.serve))
}

func (h *LiveHandler) serve(conn *websocket.Conn) {
	raw := conn.Params("sessionID")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.logger.Warn().Str("session_id", raw).Msg("rejecting live client with bad session id")
		_ = conn.Close()
		return
	}
	sessionID := uint(parsed)

	h.poller.Watch(context.Background(), sessionID)

	h.logger.Info().Uint("session_id", sessionID).Msg("live client connected")
	h.hub.ServeConnection(conn, sessionID)
	h.logger.Info().Uint("session_id", sessionID).Msg("live client disconnected")

	// Stop polling once the last dashboard leaves.
	if h.hub.Subscribers(sessionID) == 0 {
		h.poller.Unwatch(sessionID)
	}
}
