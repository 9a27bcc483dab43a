package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oopsmv/backend/internal/services"
)

type RecommendHandler struct {
	recommendService *services.RecommendService
}

func NewRecommendHandler(recommendService *services.RecommendService) *RecommendHandler {
	return &RecommendHandler{recommendService: recommendService}
}

// Recommend forwards the selection to the external recommendation service
// and relays its response verbatim.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req struct {
		Emotion  string `json:"emotion" binding:"required"`
		Activity string `json:"activity" binding:"required"`
		Weather  string `json:"weather" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, contentType, err := h.recommendService.Recommend(c.Request.Context(), req.Emotion, req.Activity, req.Weather)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation failed"})
		}
		return
	}

	c.Data(http.StatusOK, contentType, body)
}
