// Package response writes the service's documented wire shapes. Unlike the
// usual code/message/data envelope, clients of this API consume the payload
// fields directly, so success bodies are emitted as-is and failures are a
// bare {"error": "..."} object.
package response

import (
	"github.com/gin-gonic/gin"
)

func JSON(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
