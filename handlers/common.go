package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chirp/logging"
	"chirp/middleware"
	"chirp/services"

	"github.com/gin-gonic/gin"
)

// API carries what every handler needs.
type API struct {
	svc     *services.Services
	log     logging.Logger
	timeout time.Duration
}

func NewAPI(svc *services.Services, log logging.Logger, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &API{svc: svc, log: log, timeout: timeout}
}

// ctx bounds the store calls of one request.
func (a *API) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), a.timeout)
}

func actor(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindInvalidInput,
		services.KindConflict,
		services.KindAlreadyExists,
		services.KindInvalidOperation,
		services.KindOutOfRange,
		services.KindInvalidCredential:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Internal failures are logged
// with their cause and reported without detail.
func (a *API) respondError(c *gin.Context, op string, err error) {
	var e *services.Error
	if !errors.As(err, &e) || e.Kind == services.KindInternal {
		a.log.Error(c.Request.Context(), op+" failed", "error", err, "requestId", c.GetString("requestId"))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	c.JSON(statusFor(e.Kind), gin.H{"message": e.Message})
}

// invalidBody answers a request whose JSON could not be decoded.
const invalidBody = "Invalid request body"

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
