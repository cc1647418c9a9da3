package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cultureshare-api-io/api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/resource", OptionalAuth(nil), func(c *gin.Context) {
		_, err := auth.CurrentPrincipal(c)
		assert.Error(t, err)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/resource", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/gated", Auth(nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/gated", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
