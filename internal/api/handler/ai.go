package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/service"
)

// AIHandler exposes the vision model connectivity probe.
type AIHandler struct {
	vlm *service.VLMService
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(vlm *service.VLMService) *AIHandler {
	return &AIHandler{vlm: vlm}
}

// Ping handles GET /api/v1/ai/ping.
func (h *AIHandler) Ping(c *gin.Context) {
	reply, err := h.vlm.Ping(c.Request.Context())
	if err != nil {
		middleware.GetLogger(c).WithError(err).Warn("AI ping failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "Error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "Connected!",
		"provider": h.vlm.Provider(),
		"model":    h.vlm.GetModel(),
		"reply":    reply,
	})
}
