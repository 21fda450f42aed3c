package main

import (
	"context"

	"recruiting-service/internal/audit"
	"recruiting-service/internal/automation"
	"recruiting-service/internal/handler"
	"recruiting-service/internal/integration"
	mid "recruiting-service/internal/middleware"
	"recruiting-service/internal/queue"
	"recruiting-service/internal/scheduling"
	"recruiting-service/pkg/config"
	"recruiting-service/pkg/database"
	"recruiting-service/pkg/jwtutil"
	"recruiting-service/pkg/logger"
	"recruiting-service/prometheus"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// requestValidator adapts go-playground/validator to echo's Validator interface
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	// Load .env file; fall back to process environment when absent
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting recruiting-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig.Metrics.Prefix)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	err = database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	db := database.GetDB()

	// Background job queue. Reminder and sync deliveries are owned by
	// downstream collaborators; the workers here record what would be handed
	// off to them.
	jobs := queue.NewMemoryQueue(log)
	defer jobs.Close()
	jobs.Register(queue.QueueReminders, func(ctx context.Context, payload interface{}) error {
		log.Info("reminder job fired", zap.Any("payload", payload))
		return nil
	})
	jobs.Register(queue.QueueCalendarSync, func(ctx context.Context, payload interface{}) error {
		log.Info("calendar sync job fired", zap.Any("payload", payload))
		return nil
	})
	jobs.Register(queue.QueueIntegrationSync, func(ctx context.Context, payload interface{}) error {
		log.Info("integration sync job fired", zap.Any("payload", payload))
		return nil
	})

	// Scheduling engine and collaborators
	side := scheduling.NewSideChannel(log)
	defer side.Wait()
	limiter := integration.NewTokenBucketLimiter(
		appConfig.Scheduler.SyncRatePerMinute, appConfig.Scheduler.SyncBurst)
	schedSvc := scheduling.NewService(
		scheduling.NewGormStore(db),
		jobs,
		audit.NewTrail(db),
		automation.NewService(db, jobs, log),
		integration.NewService(db, jobs, limiter, log),
		side,
		log,
	)
	handler.InitScheduling(schedSvc)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Interview API routes - Apply auth middleware to validate JWT and extract tenant ID
	interviewAPI := e.Group("/api/interviews", mid.AuthMiddleware)
	interviewAPI.GET("", handler.ListInterviews)
	interviewAPI.GET("/:id", handler.GetInterview)
	interviewAPI.POST("", handler.CreateInterview)
	interviewAPI.POST("/bulk", handler.BulkScheduleInterviews)
	interviewAPI.PUT("/:id/reschedule", handler.RescheduleInterview)
	interviewAPI.PUT("/:id/cancel", handler.CancelInterview)
	interviewAPI.PUT("/:id/complete", handler.CompleteInterview)
	interviewAPI.PUT("/:id/no-show", handler.MarkInterviewNoShow)

	// Candidate API routes
	candidateAPI := e.Group("/api/candidates", mid.AuthMiddleware)
	candidateAPI.GET("", handler.ListCandidates)
	candidateAPI.GET("/:id", handler.GetCandidate)
	candidateAPI.POST("", handler.CreateCandidate)
	candidateAPI.GET("/:id/stage-history", handler.ListCandidateStageHistory)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
