package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/observability"
)

// Poller periodically recomputes the heatmap for live sessions and pushes
// fresh frames to websocket subscribers and the NATS firehose. Every
// computation carries a monotonically increasing sequence; a result that
// arrives after a newer one has been applied is discarded, never merged,
// so consumers never see partial or out-of-order grids.
type Poller struct {
	heatmaps HeatmapService
	hub      *LiveHub
	nats     *nats.Conn
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	cancels map[uint]context.CancelFunc
	applied map[uint]uint64
}

// NewPoller builds the polling scheduler. The NATS connection may be nil;
// publication is then skipped.
func NewPoller(heatmaps HeatmapService, hub *LiveHub, natsConn *nats.Conn, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{
		heatmaps: heatmaps,
		hub:      hub,
		nats:     natsConn,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		cancels:  make(map[uint]context.CancelFunc),
		applied:  make(map[uint]uint64),
	}
}

// Watch starts the polling loop for a session. Watching an already watched
// session is a no-op.
func (p *Poller) Watch(ctx context.Context, sessionID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, running := p.cancels[sessionID]; running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancels[sessionID] = cancel

	go p.loop(loopCtx, sessionID)
}

// Unwatch stops the polling loop for a session.
func (p *Poller) Unwatch(sessionID uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cancel, running := p.cancels[sessionID]; running {
		cancel()
		delete(p.cancels, sessionID)
		delete(p.applied, sessionID)
	}
}

// Shutdown stops every polling loop.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for sessionID, cancel := range p.cancels {
		cancel()
		delete(p.cancels, sessionID)
	}
	p.applied = make(map[uint]uint64)
}

func (p *Poller) loop(ctx context.Context, sessionID uint) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First frame immediately so dashboards do not wait a full interval.
	p.pollOnce(ctx, sessionID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx, sessionID)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context, sessionID uint) {
	frame, err := p.heatmaps.GetMatrix(ctx, sessionID, nil)
	if err != nil {
		// Recoverable: the previously delivered frame stays visible and
		// the next tick retries.
		observability.PollerTicks().WithLabelValues("failed").Inc()
		p.logger.Warn().Err(err).Uint("session_id", sessionID).Msg("poll cycle failed")
		return
	}

	if !p.apply(sessionID, frame.Sequence) {
		observability.PollerTicks().WithLabelValues("discarded").Inc()
		p.logger.Debug().
			Uint("session_id", sessionID).
			Uint64("sequence", frame.Sequence).
			Msg("discarding superseded frame")
		return
	}

	p.hub.Broadcast(sessionID, frame)
	p.publish(sessionID, frame)
	observability.PollerTicks().WithLabelValues("applied").Inc()
}

// apply records the sequence if it is newer than the last applied one.
func (p *Poller) apply(sessionID uint, sequence uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sequence <= p.applied[sessionID] {
		return false
	}
	p.applied[sessionID] = sequence
	return true
}

func (p *Poller) publish(sessionID uint, frame dto.HeatmapResponse) {
	if p.nats == nil {
		return
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode heatmap frame")
		return
	}

	subject := fmt.Sprintf("fokus.heatmap.%d", sessionID)
	if err := p.nats.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish heatmap frame")
	}
}
