package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ceap/app/echo-server/router"
	"ceap/business/connector"
	"ceap/business/pipeline"
	"ceap/business/program"
	"ceap/business/scoring"
	psqlRepo "ceap/internal/repository/postgres"
	redisRepo "ceap/internal/repository/redis"
	"ceap/internal/rest"
	"ceap/pkg/config"
	"ceap/pkg/database"
	redisdb "ceap/pkg/database/redis"
	"ceap/pkg/logger"
	"ceap/pkg/metrics"
	"ceap/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting engagement decision platform", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := psqlRepo.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer func() { _ = redisdb.CloseRedisClient(redisClient) }()

	// Init validate
	validate := validator.New()

	// Init repos
	programRepo := psqlRepo.NewProgramConfigRepository(db)
	candidateRepo := psqlRepo.NewCandidateRepository(db)
	rawRecordRepo := psqlRepo.NewRawRecordRepository(db)
	scoreCache := redisRepo.NewScoreCacheRepository(redisClient, cfg.Scoring.CacheTTL)

	// Init scoring
	providers := scoring.NewProviderRegistry()
	if err := providers.Register(scoring.NewHeuristicProvider("engagement-propensity", "1")); err != nil {
		logger.Fatal("Failed to register scoring provider", "error", err)
	}

	breakers := scoring.NewBreakerRegistry(scoring.BreakerConfig{
		FailureThreshold: cfg.Scoring.FailureThreshold,
		SuccessThreshold: cfg.Scoring.SuccessThreshold,
		ResetTimeout:     cfg.Scoring.ResetTimeout,
	})

	engine := scoring.NewEngine(providers, breakers, scoreCache, scoreCache, scoring.EngineConfig{
		MaxParallel: cfg.Scoring.MaxParallel,
		Fallback: scoring.FallbackConfig{
			DefaultScore:      cfg.Scoring.DefaultScore,
			DefaultConfidence: cfg.Scoring.DefaultConfidence,
			LogFailures:       cfg.Scoring.LogFailures,
		},
	})

	// Init connectors
	connectors := connector.NewRegistry()
	if err := connectors.Register(connector.NewJSONConnector(rawRecordRepo, 500)); err != nil {
		logger.Fatal("Failed to register connector", "error", err)
	}

	// Init services
	registry := program.NewRegistry(programRepo, validate)
	pipelineService := pipeline.NewService(registry, connectors, engine, breakers, candidateRepo)

	// Init handlers
	programHandler := rest.NewProgramHandler(registry)
	candidateHandler := rest.NewCandidateHandler(pipelineService)
	experimentHandler := rest.NewExperimentHandler(registry, engine)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupProgramRoutes(api, programHandler)
	router.SetupCandidateRoutes(api, candidateHandler)
	router.SetupExperimentRoutes(api, experimentHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
