package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vecapi/internal/pkg/response"
	"github.com/xxxsen/vecapi/internal/service"
)

// HealthHandler answers the platform readiness probe on GET /.
type HealthHandler struct {
	svc *service.EncodeService
}

func NewHealthHandler(svc *service.EncodeService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Get(c *gin.Context) {
	models := gin.H{
		"text": h.svc.TextModelName(),
	}
	if name := h.svc.ImageModelName(); name != "" {
		models["image"] = name
	}
	response.JSON(c, http.StatusOK, gin.H{
		"status": "ready",
		"models": models,
	})
}
