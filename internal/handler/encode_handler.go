package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vecapi/internal/pkg/response"
	"github.com/xxxsen/vecapi/internal/service"
)

type EncodeHandler struct {
	svc *service.EncodeService
}

func NewEncodeHandler(svc *service.EncodeService) *EncodeHandler {
	return &EncodeHandler{svc: svc}
}

type encodeTextRequest struct {
	Text string `json:"text"`
}

type encodeImageRequest struct {
	ImageURL string `json:"image_url"`
}

type encodeBatchTextRequest struct {
	Texts []string `json:"texts"`
}

type encodeBatchImageRequest struct {
	ImageURLs []string `json:"image_urls"`
}

func (h *EncodeHandler) Text(c *gin.Context) {
	var req encodeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	vec, err := h.svc.EncodeText(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"vector":     vec,
		"dimensions": len(vec),
		"model":      h.svc.TextModelName(),
		"type":       "text",
		"latency_ms": roundMS(time.Since(start)),
	})
}

func (h *EncodeHandler) Image(c *gin.Context) {
	var req encodeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	vec, err := h.svc.EncodeImage(c.Request.Context(), req.ImageURL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"vector":     vec,
		"dimensions": len(vec),
		"model":      h.svc.ImageModelName(),
		"type":       "image",
		"latency_ms": roundMS(time.Since(start)),
	})
}

func (h *EncodeHandler) BatchText(c *gin.Context) {
	var req encodeBatchTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	vecs, err := h.svc.EncodeTextBatch(c.Request.Context(), req.Texts)
	if err != nil {
		handleError(c, err)
		return
	}
	latency := roundMS(time.Since(start))
	response.JSON(c, http.StatusOK, gin.H{
		"vectors":                 vecs,
		"count":                   len(vecs),
		"dimensions":              batchDims(vecs),
		"model":                   h.svc.TextModelName(),
		"type":                    "text",
		"latency_ms":              latency,
		"avg_latency_per_item_ms": roundTo2(latency / float64(len(vecs))),
	})
}

func (h *EncodeHandler) BatchImage(c *gin.Context) {
	var req encodeBatchImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	vecs, err := h.svc.EncodeImageBatch(c.Request.Context(), req.ImageURLs)
	if err != nil {
		handleError(c, err)
		return
	}
	latency := roundMS(time.Since(start))
	response.JSON(c, http.StatusOK, gin.H{
		"vectors":                 vecs,
		"count":                   len(vecs),
		"dimensions":              batchDims(vecs),
		"model":                   h.svc.ImageModelName(),
		"type":                    "image",
		"latency_ms":              latency,
		"avg_latency_per_item_ms": roundTo2(latency / float64(len(vecs))),
	})
}

func roundMS(d time.Duration) float64 {
	return roundTo2(float64(d.Microseconds()) / 1000)
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

func batchDims(vecs [][]float32) int {
	if len(vecs) == 0 {
		return 0
	}
	return len(vecs[0])
}
