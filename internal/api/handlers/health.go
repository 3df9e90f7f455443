package handlers

import (
	"net/http"

	"github.com/flipbook-labs/flipbook-api/internal/config"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness and provider configuration
type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	providerStatus := func(key string) string {
		if key != "" {
			return "configured"
		}
		return "missing"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"providers": gin.H{
			"gemini": providerStatus(h.cfg.GeminiAPIKey),
			"openai": providerStatus(h.cfg.OpenAIAPIKey),
		},
	})
}
