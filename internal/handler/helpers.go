package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vecapi/internal/pkg/errs"
	"github.com/xxxsen/vecapi/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errs.IsInvalid(err), errs.IsFetchFailed(err):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errs.IsUnavailable(err):
		response.Error(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrTooMany):
		response.Error(c, http.StatusTooManyRequests, "too many requests")
	default:
		response.Error(c, http.StatusInternalServerError, "encode failed")
	}
}
