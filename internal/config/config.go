package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/fokus-go-api/internal/engagement"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	JWTSecret          string
	DefaultMode        engagement.SessionMode
	ClassifierStrategy string
	WeightedThreshold  int
	HeatmapResolution  time.Duration
	PollInterval       time.Duration
	AggregateCacheTTL  time.Duration
	AdvisorCacheTTL    time.Duration
	OpenAIAPIKey       string
	AdvisorModel       string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Classifier builds the classification strategy the configuration selects.
// The rule table is the primary strategy; the additive weighted table is an
// alternate, never a merge of the two.
func (c Config) Classifier() engagement.Classifier {
	if c.ClassifierStrategy == "weighted" {
		return engagement.NewWeightedClassifier(c.WeightedThreshold)
	}
	return engagement.NewRuleClassifier()
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FOKUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "FOKUS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("engagement.default_mode", string(engagement.ModeTeaching))
	v.SetDefault("engagement.strategy", "rules")
	v.SetDefault("engagement.weighted_threshold", 7)
	v.SetDefault("heatmap.resolution_ms", 1000)
	v.SetDefault("poll.interval", "10s")
	v.SetDefault("aggregate.cache_ttl", "30s")
	v.SetDefault("advisor.cache_ttl", "5m")
	v.SetDefault("advisor.model", "gpt-4o-mini")

	pollInterval, err := time.ParseDuration(v.GetString("poll.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid poll interval: %w", err)
	}

	aggregateTTL, err := time.ParseDuration(v.GetString("aggregate.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid aggregate cache ttl: %w", err)
	}

	advisorTTL, err := time.ParseDuration(v.GetString("advisor.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid advisor cache ttl: %w", err)
	}

	defaultMode, ok := engagement.ParseSessionMode(v.GetString("engagement.default_mode"))
	if !ok {
		return Config{}, fmt.Errorf("invalid default mode: %q", v.GetString("engagement.default_mode"))
	}

	strategy := strings.ToLower(v.GetString("engagement.strategy"))
	if strategy != "rules" && strategy != "weighted" {
		return Config{}, fmt.Errorf("invalid classifier strategy: %q", strategy)
	}

	resolutionMs := v.GetInt("heatmap.resolution_ms")
	if resolutionMs <= 0 {
		resolutionMs = 1000
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		DefaultMode:        defaultMode,
		ClassifierStrategy: strategy,
		WeightedThreshold:  v.GetInt("engagement.weighted_threshold"),
		HeatmapResolution:  time.Duration(resolutionMs) * time.Millisecond,
		PollInterval:       pollInterval,
		AggregateCacheTTL:  aggregateTTL,
		AdvisorCacheTTL:    advisorTTL,
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		AdvisorModel:       v.GetString("advisor.model"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
