package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping is the liveness probe.
func Ping() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	}
}
