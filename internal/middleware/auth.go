package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/vecapi/internal/config"
	"github.com/xxxsen/vecapi/internal/pkg/jwt"
	"github.com/xxxsen/vecapi/internal/pkg/response"
)

const ContextClientKey = "client"

// Auth returns the bearer-auth middleware for the configured mode, or nil
// when auth is disabled.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	switch cfg.Mode {
	case "api_key":
		return apiKeyAuth(cfg.APIKeys)
	case "jwt":
		return jwtAuth([]byte(cfg.JWTSecret))
	default:
		return nil
	}
}

func apiKeyAuth(keys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing authorization")
			return
		}
		for _, key := range keys {
			if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusUnauthorized, "invalid api key")
	}
}

func jwtAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "missing authorization")
			return
		}
		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Subject != "" {
			c.Set(ContextClientKey, claims.Subject)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
