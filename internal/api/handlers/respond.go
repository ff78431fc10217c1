package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playrivals/playrivals-backend/internal/service"
	"github.com/playrivals/playrivals-backend/pkg/logger"
)

// respondError maps a service error kind onto an HTTP status. Anything that
// does not wrap a known kind is an internal failure and stays opaque to the
// client.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	c.JSON(status, gin.H{"error": message})
}

// callerID extracts the authenticated user set by the auth middleware.
func callerID(c *gin.Context) (string, bool) {
	value, exists := c.Get("userId")
	if !exists {
		respondError(c, service.ErrUnauthenticated)
		return "", false
	}
	userID, ok := value.(string)
	if !ok || userID == "" {
		respondError(c, service.ErrUnauthenticated)
		return "", false
	}
	return userID, true
}
