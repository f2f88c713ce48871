package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vecapi/internal/config"
	"github.com/xxxsen/vecapi/internal/pkg/jwt"
)

func runAuth(t *testing.T, handler gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/encode/text", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	handler(c)
	return rec
}

func TestAuth_NoneMode(t *testing.T) {
	require.Nil(t, Auth(config.AuthConfig{Mode: "none"}))
	require.Nil(t, Auth(config.AuthConfig{}))
}

func TestAPIKeyAuth(t *testing.T) {
	handler := Auth(config.AuthConfig{Mode: "api_key", APIKeys: []string{"k1", "k2"}})
	require.NotNil(t, handler)

	require.Equal(t, http.StatusUnauthorized, runAuth(t, handler, "").Code)
	require.Equal(t, http.StatusUnauthorized, runAuth(t, handler, "Bearer nope").Code)
	require.Equal(t, http.StatusUnauthorized, runAuth(t, handler, "Basic k1").Code)
	require.Equal(t, http.StatusOK, runAuth(t, handler, "Bearer k2").Code)
}

func TestJWTAuth(t *testing.T) {
	secret := "jwt-secret"
	handler := Auth(config.AuthConfig{Mode: "jwt", JWTSecret: secret})
	require.NotNil(t, handler)

	token, err := jwt.GenerateToken("client-a", []byte(secret), time.Hour)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, runAuth(t, handler, "Bearer "+token).Code)
	require.Equal(t, http.StatusUnauthorized, runAuth(t, handler, "Bearer garbage").Code)

	expired, err := jwt.GenerateToken("client-a", []byte(secret), -time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, runAuth(t, handler, "Bearer "+expired).Code)
}
