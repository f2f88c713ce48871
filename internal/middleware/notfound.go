package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vecapi/internal/pkg/errs"
	"github.com/xxxsen/vecapi/internal/pkg/response"
)

// NotFound rewrites gin's plain-text 404 into the documented error shape.
// FullPath is empty only when no route matched, so matched requests pass
// straight through.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.FullPath() == "" {
			response.Error(c, http.StatusNotFound, errs.ErrNotFound.Error())
			return
		}
		c.Next()
	}
}
