package api

import (
	"context"
	"log"

	"github.com/flipbook-labs/flipbook-api/internal/api/handlers"
	"github.com/flipbook-labs/flipbook-api/internal/api/middleware"
	"github.com/flipbook-labs/flipbook-api/internal/config"
	"github.com/flipbook-labs/flipbook-api/internal/llm"
	"github.com/flipbook-labs/flipbook-api/internal/metrics"
	"github.com/flipbook-labs/flipbook-api/internal/prompt"
	"github.com/flipbook-labs/flipbook-api/internal/services"
	"github.com/flipbook-labs/flipbook-api/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the gin router with all routes and middleware
func SetupRouter(db *gorm.DB, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(middleware.RecoverWithSentry())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.RequestTracking())
	router.Use(middleware.CORS())

	plannerPrompt, err := prompt.NewPromptBuilder().PlannerSystemPrompt()
	if err != nil {
		log.Printf("⚠️  Failed to load planner system prompt: %v", err)
	}
	providers := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey, plannerPrompt, cfg.RendererModel)

	blobs, err := storage.NewS3Store(context.Background(), cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		log.Printf("⚠️  Blob store unavailable, frames will not be mirrored: %v", err)
		blobs = &storage.NoopStore{}
	}

	cloudwatch, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	history := services.NewHistoryService(db)

	animationHandler := handlers.NewAnimationHandler(cfg, providers, history, blobs, cloudwatch)
	healthHandler := handlers.NewHealthHandler(cfg)
	metricsHandler := handlers.NewMetricsHandler(version)

	router.GET("/health", healthHandler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/animations/generate", animationHandler.Generate)
		v1.GET("/generations", animationHandler.ListGenerations)
		v1.GET("/metrics", metricsHandler.GetMetrics)
	}

	return router
}
