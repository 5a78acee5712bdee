// errors.go - Maps service errors onto HTTP responses

package handlers

import (
	"errors"
	"net/http"

	"go-marketplace-backend/logger"
	"go-marketplace-backend/services"

	"github.com/gin-gonic/gin"
)

// respondError writes the status and JSON body for err. Unexpected errors are logged
// and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var cerr *services.ConflictError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated."})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Message, "field": cerr.Field})
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
	}
}

// upsertStatus is 201 for a created entity and 200 for an update.
func upsertStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
