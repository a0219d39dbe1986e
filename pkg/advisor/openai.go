package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	advisorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fokus",
		Subsystem: "advisor",
		Name:      "recommendation_duration_seconds",
		Help:      "Duration of advisor recommendation requests",
	}, []string{"model"})

	advisorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fokus",
		Subsystem: "advisor",
		Name:      "recommendation_failures_total",
		Help:      "Number of advisor recommendation failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI advisor.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIAdvisor implements Advisor against the OpenAI chat completion API.
type OpenAIAdvisor struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIAdvisor builds a new advisor using the provided configuration.
func NewOpenAIAdvisor(cfg OpenAIConfig) (*OpenAIAdvisor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 512
	}

	tracer := otel.Tracer("github.com/noah-isme/fokus-go-api/pkg/advisor/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIAdvisor{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Recommend sends the profile to OpenAI and parses the suggestion list.
func (a *OpenAIAdvisor) Recommend(parent context.Context, profile StudentProfile) (Recommendation, error) {
	ctx, span := a.tracer.Start(parent, "openai.recommend", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: advisorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildProfilePrompt(profile),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	advisorDuration.WithLabelValues(a.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		advisorFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Recommendation{}, fmt.Errorf("openai recommend: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		advisorFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Recommendation{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseRecommendation(content)
	if err != nil {
		advisorFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Recommendation{}, err
	}

	result.Model = a.cfg.Model
	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func advisorSystemPrompt() string {
	return "You are a pedagogy assistant. Given one student's classroom engagement statistics, " +
		"respond with a JSON object containing a suggestions array of short, concrete, supportive " +
		"actions the instructor can take. Never diagnose the student; focus on classroom adjustments."
}

func buildProfilePrompt(profile StudentProfile) string {
	builder := strings.Builder{}
	builder.WriteString("# Student\n")
	builder.WriteString(profile.StudentName)
	builder.WriteString("\n\n## Session\n")
	builder.WriteString(profile.SessionTitle)
	builder.WriteString(fmt.Sprintf("\n\n## Engagement\nengaged: %.1f%%, disengaged: %.1f%%\n", profile.EngagedPercent, profile.DisengagedPercent))

	if len(profile.ModePercents) > 0 {
		builder.WriteString("\n## Engagement by mode\n")
		for _, line := range sortedPercentLines(profile.ModePercents) {
			builder.WriteString(line)
		}
	}

	writeCountSection(&builder, "Pose distribution", profile.PoseCounts)
	writeCountSection(&builder, "Gaze distribution", profile.GazeCounts)
	writeCountSection(&builder, "Emotion distribution", profile.EmotionCounts)
	writeCountSection(&builder, "Yawning", profile.YawnCounts)

	if profile.Note != "" {
		builder.WriteString("\n## Instructor note\n")
		builder.WriteString(profile.Note)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func sortedPercentLines(percents map[string]float64) []string {
	keys := make([]string, 0, len(percents))
	for key := range percents {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %.1f%%\n", key, percents[key]))
	}
	return lines
}

func writeCountSection(builder *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder.WriteString("\n## " + title + "\n")
	for _, key := range keys {
		builder.WriteString(fmt.Sprintf("%s: %d\n", key, counts[key]))
	}
}

func parseRecommendation(content string) (Recommendation, error) {
	type payload struct {
		Suggestions []string `json:"suggestions"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return Recommendation{}, fmt.Errorf("parse recommendation json: %w", err)
	}

	cleaned := make([]string, 0, len(data.Suggestions))
	for _, suggestion := range data.Suggestions {
		if trimmed := strings.TrimSpace(suggestion); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) == 0 {
		return Recommendation{}, fmt.Errorf("no suggestions in response")
	}

	return Recommendation{Suggestions: cleaned}, nil
}
