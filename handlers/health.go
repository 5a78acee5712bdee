// health.go - Liveness/readiness probe

package handlers

import (
	"context"
	"net/http"
	"time"

	"go-marketplace-backend/database"

	"github.com/gin-gonic/gin"
)

// Health - GET /healthz pings the database
func Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := database.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
