package controller

import (
	"errors"
	"net/http"

	"approcciala/platform"
	"approcciala/service"

	"github.com/gin-gonic/gin"
)

var logger = platform.Logger

// respondError maps a service error onto a status code. Remote and unexpected
// failures are logged and shown as fallback; user errors are shown as they are.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Warnf("[%s] %s: %s", c.GetString("requestId"), fallback, err)
		msg = fallback
	}
	body := gin.H{"error": msg}
	switch status {
	case http.StatusUnauthorized:
		body["redirect"] = service.RouteAuth
	case http.StatusNotFound:
		body["redirect"] = service.RouteDashboard
	}
	c.AbortWithStatusJSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRemote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
