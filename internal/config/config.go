package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key (alternate pose planner)
	GeminiAPIKey string // Google Gemini API key (planner + frame renderer)

	// Generation
	PoseCount     int    // Server-fixed number of poses per animation
	PlannerModel  string // Override for the pose-planner model
	RendererModel string // Override for the image-output model

	// Storage (optional)
	DatabaseURL string // Postgres URL for generation history; empty disables
	S3Bucket    string // Bucket for mirrored frames; empty disables
	S3Region    string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

const defaultPoseCount = 12

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		PoseCount:         getEnvInt("POSE_COUNT", defaultPoseCount),
		PlannerModel:      getEnv("PLANNER_MODEL", ""),
		RendererModel:     getEnv("RENDERER_MODEL", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
