package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/models"
	"github.com/noah-isme/fokus-go-api/internal/repository"
)

// ErrInvalidMode indicates a mode outside the closed enumeration.
var ErrInvalidMode = errors.New("unrecognized session mode")

// SessionService records instructor mode declarations and serves the
// resolved mode timeline.
type SessionService interface {
	DeclareMode(ctx context.Context, sessionID uint, req dto.ModeChangeRequest) (models.ModeChange, error)
	GetTimeline(ctx context.Context, sessionID uint) (dto.ModeTimelineResponse, error)
}

type sessionService struct {
	modeChanges repository.ModeChangeRepository
	heatmaps    HeatmapService
	defaultMode engagement.SessionMode
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSessionService builds the session mode service.
func NewSessionService(
	modeChanges repository.ModeChangeRepository,
	heatmaps HeatmapService,
	defaultMode engagement.SessionMode,
	validate *validator.Validate,
	logger zerolog.Logger,
) SessionService {
	return &sessionService{
		modeChanges: modeChanges,
		heatmaps:    heatmaps,
		defaultMode: defaultMode,
		validate:    validate,
		logger:      logger.With().Str("component", "session_service").Logger(),
		now:         time.Now,
	}
}

// DeclareMode validates and appends a mode-change event. When the request
// omits a time key, the declaration is stamped with the current clock.
func (s *sessionService) DeclareMode(ctx context.Context, sessionID uint, req dto.ModeChangeRequest) (models.ModeChange, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.ModeChange{}, err
	}

	mode, ok := engagement.ParseSessionMode(req.Mode)
	if !ok {
		return models.ModeChange{}, ErrInvalidMode
	}

	timeKey := req.TimeKey
	if timeKey == "" {
		timeKey = strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	if _, ok := engagement.NormalizeTimeKey(timeKey); !ok {
		return models.ModeChange{}, fmt.Errorf("unparsable time key %q", req.TimeKey)
	}

	change := models.ModeChange{
		SessionID: sessionID,
		TimeKey:   timeKey,
		Mode:      string(mode),
	}
	if req.Note != "" {
		change.Metadata = datatypes.JSONMap{"note": req.Note}
	}

	if err := s.modeChanges.Create(ctx, &change); err != nil {
		return models.ModeChange{}, err
	}

	s.logger.Info().
		Uint("session_id", sessionID).
		Str("mode", string(mode)).
		Str("time_key", timeKey).
		Msg("mode declared")

	return change, nil
}

func (s *sessionService) GetTimeline(ctx context.Context, sessionID uint) (dto.ModeTimelineResponse, error) {
	feed, err := s.modeChanges.MapForSession(ctx, sessionID)
	if err != nil {
		return dto.ModeTimelineResponse{}, err
	}

	timeline := engagement.BuildTimeline(feed)
	events := make([]dto.ModeEventResponse, 0, len(timeline))
	for _, event := range timeline {
		events = append(events, dto.ModeEventResponse{Time: event.Time, Mode: string(event.Mode)})
	}

	response := dto.ModeTimelineResponse{
		SessionID:   sessionID,
		Events:      events,
		DefaultMode: string(s.defaultMode),
		GeneratedAt: s.now().UTC(),
	}

	if s.heatmaps != nil {
		if pinned, ok := s.heatmaps.Override(ctx, sessionID); ok {
			response.Override = string(pinned)
		}
	}

	return response, nil
}
