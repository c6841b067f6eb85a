package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/examcert-server/internal/service"
)

// maxBodyBytes caps request bodies; every request of the API is a small JSON object.
const maxBodyBytes = 64 << 10

func bindJSON(c *gin.Context, v any) error {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	}
	return c.ShouldBindJSON(v)
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// handleError maps service errors to HTTP responses.
// Anything unrecognised is reported as an internal error without details.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyUsername):
		abortWithError(c, http.StatusBadRequest, "please enter a username")
	case errors.Is(err, service.ErrUserExists):
		abortWithError(c, http.StatusConflict, "username already exists, please login")
	case errors.Is(err, service.ErrInvalidCredentials):
		abortWithError(c, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, service.ErrAlreadyPassed):
		abortWithError(c, http.StatusConflict, "exam already passed")
	case errors.Is(err, service.ErrNoCertificate):
		abortWithError(c, http.StatusNotFound, "no passing result")
	case errors.Is(err, service.ErrStoreUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "storage is temporarily unavailable, please try again")
	default:
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}
