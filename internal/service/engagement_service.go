package service

import (
	"context"
	"encoding/json"
	"fmt"
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

// EngagementService produces the per-student engagement aggregate.
type EngagementService interface {
	GetStudentAggregate(ctx context.Context, sessionID, studentID uint) (dto.StudentEngagementResponse, error)
}

type engagementService struct {
	observations repository.ObservationRepository
	modeChanges  repository.ModeChangeRepository
	classifier   engagement.Classifier
	defaultMode  engagement.SessionMode
	cache        *redis.Client
	cacheTTL     time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

// NewEngagementService builds the per-student aggregator.
func NewEngagementService(
	observations repository.ObservationRepository,
	modeChanges repository.ModeChangeRepository,
	classifier engagement.Classifier,
	defaultMode engagement.SessionMode,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) EngagementService {
	return &engagementService{
		observations: observations,
		modeChanges:  modeChanges,
		classifier:   classifier,
		defaultMode:  defaultMode,
		cache:        cache,
		cacheTTL:     ttl,
		logger:       logger.With().Str("component", "engagement_service").Logger(),
		now:          time.Now,
	}
}

func (s *engagementService) GetStudentAggregate(ctx context.Context, sessionID, studentID uint) (dto.StudentEngagementResponse, error) {
	cacheKey := fmt.Sprintf("engagement:aggregate:%d:%d", sessionID, studentID)
	tracer := otel.Tracer("github.com/noah-isme/fokus-go-api/internal/service/engagement")
	ctx, span := tracer.Start(ctx, "engagement.aggregate")
	span.SetAttributes(
		attribute.Int64("session_id", int64(sessionID)),
		attribute.Int64("student_id", int64(studentID)),
	)
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentEngagementResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.AggregateRequests().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read aggregate cache")
		}
	}

	records, err := s.observations.MapForStudent(ctx, sessionID, studentID)
	if err != nil {
		observability.AggregateRequests().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "observation_feed_failed")
		return dto.StudentEngagementResponse{}, err
	}

	modeFeed, err := s.modeChanges.MapForSession(ctx, sessionID)
	if err != nil {
		observability.AggregateRequests().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "mode_feed_failed")
		return dto.StudentEngagementResponse{}, err
	}

	timeline := engagement.BuildTimeline(modeFeed)
	aggregate := engagement.Aggregate(records, timeline, s.classifier, s.defaultMode)

	response := s.buildResponse(sessionID, studentID, aggregate)
	span.SetAttributes(
		attribute.Int("record_count", len(records)),
		attribute.Int("skipped_records", aggregate.Skipped),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store aggregate cache")
			}
		}
	}

	observability.AggregateRequests().WithLabelValues("miss").Inc()

	return response, nil
}

func (s *engagementService) buildResponse(sessionID, studentID uint, aggregate engagement.StudentAggregate) dto.StudentEngagementResponse {
	byMode := make(map[string]dto.ModeTallyResponse, len(aggregate.ByMode))
	for mode, tally := range aggregate.ByMode {
		byMode[string(mode)] = tallyResponse(tally)
	}

	return dto.StudentEngagementResponse{
		SessionID:      sessionID,
		StudentID:      studentID,
		Overall:        tallyResponse(aggregate.Overall),
		ByMode:         byMode,
		PoseCounts:     aggregate.PoseCounts,
		GazeCounts:     aggregate.GazeCounts,
		EmotionCounts:  aggregate.EmotionCounts,
		YawnCounts:     aggregate.YawnCounts,
		SkippedRecords: aggregate.Skipped,
		GeneratedAt:    s.now().UTC(),
	}
}

func tallyResponse(tally engagement.Tally) dto.ModeTallyResponse {
	return dto.ModeTallyResponse{
		Engaged:           tally.Engaged,
		Disengaged:        tally.Disengaged,
		EngagedPercent:    tally.EngagedPercent(),
		DisengagedPercent: tally.DisengagedPercent(),
	}
}
