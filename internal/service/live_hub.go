package service

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/observability"
)

const liveSendBufferSize = 8

// LiveHub tracks dashboard websocket clients per session and fans fresh
// heatmap frames out to them.
type LiveHub struct {
	mu       sync.RWMutex
	sessions map[uint]map[*liveClient]struct{}
	logger   zerolog.Logger
}

type liveClient struct {
	conn   *websocket.Conn
	send   chan dto.HeatmapResponse
	closed chan struct{}
	once   sync.Once
}

// NewLiveHub creates the broadcast hub.
func NewLiveHub(logger zerolog.Logger) *LiveHub {
	return &LiveHub{
		sessions: make(map[uint]map[*liveClient]struct{}),
		logger:   logger.With().Str("component", "live_hub").Logger(),
	}
}

// ServeConnection registers the websocket client and blocks until it
// disconnects. Must be called from the websocket upgrade handler.
func (h *LiveHub) ServeConnection(conn *websocket.Conn, sessionID uint) {
	client := &liveClient{
		conn:   conn,
		send:   make(chan dto.HeatmapResponse, liveSendBufferSize),
		closed: make(chan struct{}),
	}

	h.register(sessionID, client)
	defer h.unregister(sessionID, client)

	go client.writePump(h.logger)

	// Read loop only detects disconnects; clients never send payloads.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			client.close()
			return
		}
	}
}

// Broadcast delivers a frame to every subscriber of the session. Slow
// clients whose buffers are full skip the frame rather than block the
// polling cycle; the next frame supersedes it anyway.
func (h *LiveHub) Broadcast(sessionID uint, frame dto.HeatmapResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.sessions[sessionID] {
		select {
		case client.send <- frame:
		default:
			h.logger.Debug().Uint("session_id", sessionID).Msg("dropping frame for slow client")
		}
	}
}

// Subscribers reports the number of connected clients for a session.
func (h *LiveHub) Subscribers(sessionID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *LiveHub) register(sessionID uint, client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[sessionID]
	if !ok {
		clients = make(map[*liveClient]struct{})
		h.sessions[sessionID] = clients
	}
	clients[client] = struct{}{}
	observability.LiveSubscribers().Inc()
}

func (h *LiveHub) unregister(sessionID uint, client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.sessions[sessionID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			observability.LiveSubscribers().Dec()
		}
		if len(clients) == 0 {
			delete(h.sessions, sessionID)
		}
	}
	client.close()
}

func (c *liveClient) writePump(logger zerolog.Logger) {
	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteJSON(frame); err != nil {
				logger.Debug().Err(err).Msg("live client write failed")
				c.close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *liveClient) close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}
