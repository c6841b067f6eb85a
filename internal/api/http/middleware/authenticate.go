package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

// Authenticate validates bearer session tokens and injects the username into the request context.
type Authenticate struct {
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, contextManager: contextManager, logger: logger}
}

// Handle aborts requests without a valid session token.
func (m *Authenticate) Handle(c *gin.Context) {
	tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || tokenString == "" {
		unauthorized(c, "missing authorization token")
		return
	}

	username, err := m.tokenManager.ParseSessionToken(tokenString)
	if err != nil {
		m.logger.Debug("Authenticate: rejected session token",
			"path", c.Request.URL.Path,
			"error", err.Error())
		unauthorized(c, "invalid authorization token")
		return
	}

	c.Request = c.Request.WithContext(m.contextManager.SetUsernameToContext(c.Request.Context(), username))
	c.Next()
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
