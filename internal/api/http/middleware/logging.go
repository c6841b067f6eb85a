package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/examcert-server/internal/logger"
)

// RequestIDHeader carries the request id assigned by Logging.
const RequestIDHeader = "X-Request-ID"

// Logging logs every HTTP request with its id, status and duration.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle runs the rest of the chain and logs the outcome.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(requestID); err != nil {
		requestID = uuid.NewString()
	}
	c.Header(RequestIDHeader, requestID)

	c.Next()

	status := c.Writer.Status()
	args := []any{
		"request_id", requestID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"bytes", max(c.Writer.Size(), 0),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if status >= http.StatusInternalServerError {
		l.logger.Error("HTTP request failed", args...)
		return
	}
	l.logger.Info("HTTP request completed", args...)
}
