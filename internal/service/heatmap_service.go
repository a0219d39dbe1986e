package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/observability"
	"github.com/noah-isme/fokus-go-api/internal/repository"
)

// ErrStudentUnknown indicates a seek request referenced a label absent
// from the current matrix.
var ErrStudentUnknown = errors.New("student not present in heatmap")

// HeatmapService densifies per-student engagement into the class matrix.
type HeatmapService interface {
	GetMatrix(ctx context.Context, sessionID uint, override *engagement.SessionMode) (dto.HeatmapResponse, error)
	SeekOffset(ctx context.Context, sessionID uint, studentLabel string, at int64) (dto.SeekResponse, error)
	SetOverride(ctx context.Context, sessionID uint, mode engagement.SessionMode) error
	ClearOverride(ctx context.Context, sessionID uint) error
	Override(ctx context.Context, sessionID uint) (engagement.SessionMode, bool)
}

type heatmapService struct {
	attendance   repository.AttendanceRepository
	observations repository.ObservationRepository
	modeChanges  repository.ModeChangeRepository
	classifier   engagement.Classifier
	defaultMode  engagement.SessionMode
	resolution   time.Duration
	redis        *redis.Client
	guard        *engagement.Guard
	logger       zerolog.Logger
	now          func() time.Time

	sequence uint64
	mu       sync.Mutex
	latest   map[uint]dto.HeatmapResponse
}

// NewHeatmapService builds the densifier service.
func NewHeatmapService(
	attendance repository.AttendanceRepository,
	observations repository.ObservationRepository,
	modeChanges repository.ModeChangeRepository,
	classifier engagement.Classifier,
	defaultMode engagement.SessionMode,
	resolution time.Duration,
	redisClient *redis.Client,
	logger zerolog.Logger,
) HeatmapService {
	return &heatmapService{
		attendance:   attendance,
		observations: observations,
		modeChanges:  modeChanges,
		classifier:   classifier,
		defaultMode:  defaultMode,
		resolution:   resolution,
		redis:        redisClient,
		guard:        engagement.NewGuard(nil),
		logger:       logger.With().Str("component", "heatmap_service").Logger(),
		now:          time.Now,
		latest:       make(map[uint]dto.HeatmapResponse),
	}
}

// heatmapInputs is the fingerprinted input set: any change in attendance,
// observations, mode history, or the override forces a rebuild.
type heatmapInputs struct {
	Students []string                                    `json:"students"`
	Feeds    map[uint]map[string]engagement.FeatureRecord `json:"feeds"`
	Modes    map[string]string                           `json:"modes"`
	Override string                                      `json:"override"`
}

func (s *heatmapService) GetMatrix(ctx context.Context, sessionID uint, override *engagement.SessionMode) (dto.HeatmapResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/fokus-go-api/internal/service/heatmap")
	ctx, span := tracer.Start(ctx, "heatmap.densify")
	span.SetAttributes(attribute.Int64("session_id", int64(sessionID)))
	defer span.End()

	if override == nil {
		if pinned, ok := s.Override(ctx, sessionID); ok {
			override = &pinned
		}
	}

	attendances, err := s.attendance.ListPresent(ctx, sessionID)
	if err != nil {
		observability.HeatmapRecomputes().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "attendance_feed_failed")
		return dto.HeatmapResponse{}, err
	}

	feeds, err := s.observations.MapsForSession(ctx, sessionID)
	if err != nil {
		observability.HeatmapRecomputes().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "observation_feed_failed")
		return dto.HeatmapResponse{}, err
	}

	modeFeed, err := s.modeChanges.MapForSession(ctx, sessionID)
	if err != nil {
		observability.HeatmapRecomputes().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "mode_feed_failed")
		return dto.HeatmapResponse{}, err
	}

	series := make([]engagement.StudentSeries, 0, len(attendances))
	labels := make([]string, 0, len(attendances))
	for _, attendance := range attendances {
		label := attendance.Student.Name
		if label == "" {
			label = fmt.Sprintf("student-%d", attendance.StudentID)
		}
		labels = append(labels, label)
		series = append(series, engagement.StudentSeries{Label: label, Records: feeds[attendance.StudentID]})
	}

	inputs := heatmapInputs{Students: labels, Feeds: feeds, Modes: modeFeed}
	if override != nil {
		inputs.Override = string(*override)
	}

	guardKey := fmt.Sprintf("session:%d", sessionID)
	if !s.guard.Changed(guardKey, inputs) {
		if previous, ok := s.lastResponse(sessionID); ok {
			observability.HeatmapRecomputes().WithLabelValues("skipped").Inc()
			span.SetAttributes(attribute.Bool("fingerprint_hit", true))
			previous.Recomputed = false
			return previous, nil
		}
	}

	start := time.Now()
	matrix, err := engagement.BuildMatrix(series, engagement.BuildTimeline(modeFeed), s.classifier, engagement.MatrixOptions{
		Resolution:   s.resolution.Milliseconds(),
		ModeOverride: override,
		Fallback:     s.defaultMode,
	})
	observability.HeatmapBuildLatency().Observe(time.Since(start).Seconds())

	if errors.Is(err, engagement.ErrNoData) {
		observability.HeatmapRecomputes().WithLabelValues("no_data").Inc()
		response := dto.HeatmapResponse{
			SessionID:    sessionID,
			Students:     labels,
			ResolutionMs: s.resolution.Milliseconds(),
			NoData:       true,
			Sequence:     atomic.AddUint64(&s.sequence, 1),
			Recomputed:   true,
			GeneratedAt:  s.now().UTC(),
		}
		s.storeResponse(sessionID, response)
		return response, nil
	}
	if err != nil {
		observability.HeatmapRecomputes().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "densify_failed")
		return dto.HeatmapResponse{}, err
	}

	response := s.buildResponse(sessionID, matrix)
	s.storeResponse(sessionID, response)

	observability.HeatmapRecomputes().WithLabelValues("built").Inc()
	span.SetAttributes(
		attribute.Int("cell_count", len(response.Cells)),
		attribute.Int("student_count", len(response.Students)),
	)

	return response, nil
}

func (s *heatmapService) buildResponse(sessionID uint, matrix engagement.Matrix) dto.HeatmapResponse {
	cells := make([]dto.HeatmapCellResponse, 0, len(matrix.Cells))
	for _, cell := range matrix.Cells {
		cells = append(cells, dto.HeatmapCellResponse{Time: cell.Time, Student: cell.Student, State: cell.State})
	}

	return dto.HeatmapResponse{
		SessionID:    sessionID,
		Cells:        cells,
		Students:     matrix.Students,
		Start:        matrix.Start,
		End:          matrix.End,
		ResolutionMs: matrix.Resolution,
		Sequence:     atomic.AddUint64(&s.sequence, 1),
		Recomputed:   true,
		GeneratedAt:  s.now().UTC(),
	}
}

// SeekOffset translates a heatmap click back into seconds since session
// start for external playback seeking.
func (s *heatmapService) SeekOffset(ctx context.Context, sessionID uint, studentLabel string, at int64) (dto.SeekResponse, error) {
	response, ok := s.lastResponse(sessionID)
	if !ok || response.NoData {
		rebuilt, err := s.GetMatrix(ctx, sessionID, nil)
		if err != nil {
			return dto.SeekResponse{}, err
		}
		if rebuilt.NoData {
			return dto.SeekResponse{}, engagement.ErrNoData
		}
		response = rebuilt
	}

	known := false
	for _, label := range response.Students {
		if label == studentLabel {
			known = true
			break
		}
	}
	if !known {
		return dto.SeekResponse{}, ErrStudentUnknown
	}

	matrix := engagement.Matrix{Start: response.Start, End: response.End, Resolution: response.ResolutionMs}

	return dto.SeekResponse{
		Student:       studentLabel,
		Time:          at,
		OffsetSeconds: matrix.OffsetSeconds(at),
	}, nil
}

func overrideKey(sessionID uint) string {
	return fmt.Sprintf("heatmap:override:%d", sessionID)
}

// SetOverride pins the visualization mode for a session. The pin lives in
// redis so every replica densifies against the same mode.
func (s *heatmapService) SetOverride(ctx context.Context, sessionID uint, mode engagement.SessionMode) error {
	if s.redis == nil {
		return fmt.Errorf("override store unavailable")
	}
	return s.redis.Set(ctx, overrideKey(sessionID), string(mode), 0).Err()
}

// ClearOverride removes the pin, returning the heatmap to historical modes.
func (s *heatmapService) ClearOverride(ctx context.Context, sessionID uint) error {
	if s.redis == nil {
		return fmt.Errorf("override store unavailable")
	}
	return s.redis.Del(ctx, overrideKey(sessionID)).Err()
}

// Override reports the currently pinned mode, if any.
func (s *heatmapService) Override(ctx context.Context, sessionID uint) (engagement.SessionMode, bool) {
	if s.redis == nil {
		return "", false
	}

	value, err := s.redis.Get(ctx, overrideKey(sessionID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read mode override")
		}
		return "", false
	}

	mode, ok := engagement.ParseSessionMode(value)
	if !ok {
		return "", false
	}

	return mode, true
}

func (s *heatmapService) lastResponse(sessionID uint) (dto.HeatmapResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	response, ok := s.latest[sessionID]
	return response, ok
}

func (s *heatmapService) storeResponse(sessionID uint, response dto.HeatmapResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[sessionID] = response
}
