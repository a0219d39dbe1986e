package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/dto"
	"github.com/noah-isme/fokus-go-api/pkg/advisor"
)

// AdvisorService turns a student's engagement aggregate into teaching
// suggestions via the external advisor model.
type AdvisorService interface {
	Recommend(ctx context.Context, sessionID, studentID uint, note string) (dto.RecommendationResponse, error)
}

type advisorService struct {
	engagement EngagementService
	model      advisor.Advisor
	cache      *redis.Client
	cacheTTL   time.Duration
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAdvisorService builds the recommendation service. Model output is
// sanitized to plain text before it reaches any client.
func NewAdvisorService(
	engagementSvc EngagementService,
	model advisor.Advisor,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) AdvisorService {
	return &advisorService{
		engagement: engagementSvc,
		model:      model,
		cache:      cache,
		cacheTTL:   ttl,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "advisor_service").Logger(),
		now:        time.Now,
	}
}

func (s *advisorService) Recommend(ctx context.Context, sessionID, studentID uint, note string) (dto.RecommendationResponse, error) {
	if s.model == nil {
		return dto.RecommendationResponse{}, fmt.Errorf("advisor model not configured")
	}

	cacheKey := fmt.Sprintf("advisor:recommendation:%d:%d", sessionID, studentID)
	if note == "" && s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.RecommendationResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read recommendation cache")
		}
	}

	aggregate, err := s.engagement.GetStudentAggregate(ctx, sessionID, studentID)
	if err != nil {
		return dto.RecommendationResponse{}, err
	}

	profile := advisor.StudentProfile{
		StudentName:       aggregate.StudentName,
		SessionTitle:      fmt.Sprintf("session %d", sessionID),
		EngagedPercent:    aggregate.Overall.EngagedPercent,
		DisengagedPercent: aggregate.Overall.DisengagedPercent,
		ModePercents:      make(map[string]float64, len(aggregate.ByMode)),
		PoseCounts:        aggregate.PoseCounts,
		GazeCounts:        aggregate.GazeCounts,
		EmotionCounts:     aggregate.EmotionCounts,
		YawnCounts:        aggregate.YawnCounts,
		Note:              s.sanitizer.Sanitize(note),
	}
	for mode, tally := range aggregate.ByMode {
		profile.ModePercents[mode] = tally.EngagedPercent
	}

	recommendation, err := s.model.Recommend(ctx, profile)
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("generate recommendation: %w", err)
	}

	suggestions := make([]string, 0, len(recommendation.Suggestions))
	for _, suggestion := range recommendation.Suggestions {
		suggestions = append(suggestions, s.sanitizer.Sanitize(suggestion))
	}

	response := dto.RecommendationResponse{
		SessionID:   sessionID,
		StudentID:   studentID,
		Suggestions: suggestions,
		Model:       recommendation.Model,
		GeneratedAt: s.now().UTC(),
	}

	if note == "" && s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store recommendation cache")
			}
		}
	}

	return response, nil
}
