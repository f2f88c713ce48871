package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Health *HealthHandler
	Encode *EncodeHandler
	// Auth and RateLimit apply to encode routes only; the health probe
	// stays open for the serving platform.
	Auth      gin.HandlerFunc
	RateLimit gin.HandlerFunc
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", deps.Health.Get)

	encodeGroup := api.Group("")
	if deps.Auth != nil {
		encodeGroup.Use(deps.Auth)
	}
	if deps.RateLimit != nil {
		encodeGroup.Use(deps.RateLimit)
	}
	encodeGroup.POST("/encode/text", deps.Encode.Text)
	encodeGroup.POST("/encode/image", deps.Encode.Image)
	encodeGroup.POST("/encode/batch/text", deps.Encode.BatchText)
	encodeGroup.POST("/encode/batch/image", deps.Encode.BatchImage)
}
