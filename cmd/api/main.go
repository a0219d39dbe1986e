package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fokus-go-api/internal/config"
	"github.com/noah-isme/fokus-go-api/internal/database"
	"github.com/noah-isme/fokus-go-api/internal/handler"
	"github.com/noah-isme/fokus-go-api/internal/middleware"
	"github.com/noah-isme/fokus-go-api/internal/models"
	"github.com/noah-isme/fokus-go-api/internal/repository"
	"github.com/noah-isme/fokus-go-api/internal/router"
	"github.com/noah-isme/fokus-go-api/internal/service"
	"github.com/noah-isme/fokus-go-api/pkg/advisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Session{},
		&models.Student{},
		&models.Attendance{},
		&models.Observation{},
		&models.ModeChange{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			// Live dashboards still work over websockets; only the firehose is lost.
			logger.Warn().Err(err).Msg("nats unavailable, heatmap frames will not be published")
		} else {
			defer natsConn.Close()
		}
	}

	var advisorModel advisor.Advisor
	if cfg.OpenAIAPIKey != "" {
		openaiAdvisor, err := advisor.NewOpenAIAdvisor(advisor.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AdvisorModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create advisor client: %v", err)
		}
		advisorModel = openaiAdvisor
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	classifier := cfg.Classifier()

	observationRepo := repository.NewObservationRepository(db)
	modeChangeRepo := repository.NewModeChangeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	engagementService := service.NewEngagementService(observationRepo, modeChangeRepo, classifier, cfg.DefaultMode, redisClient, cfg.AggregateCacheTTL, logger)
	heatmapService := service.NewHeatmapService(attendanceRepo, observationRepo, modeChangeRepo, classifier, cfg.DefaultMode, cfg.HeatmapResolution, redisClient, logger)
	sessionService := service.NewSessionService(modeChangeRepo, heatmapService, cfg.DefaultMode, validate, logger)
	advisorService := service.NewAdvisorService(engagementService, advisorModel, redisClient, cfg.AdvisorCacheTTL, logger)

	liveHub := service.NewLiveHub(logger)
	poller := service.NewPoller(heatmapService, liveHub, natsConn, cfg.PollInterval, logger)

	engagementHandler := handler.NewEngagementHandler(engagementService, advisorService, logger)
	heatmapHandler := handler.NewHeatmapHandler(heatmapService, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, logger)
	liveHandler := handler.NewLiveHandler(liveHub, poller, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EngagementHandler: engagementHandler,
		HeatmapHandler:    heatmapHandler,
		SessionHandler:    sessionHandler,
		LiveHandler:       liveHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, poller)
}

func waitForShutdown(app *fiber.App, poller *service.Poller) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	poller.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
