package router

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/examcert-server/internal/api/http/handler"
	"github.com/dtroode/examcert-server/internal/api/http/middleware"
	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

// Router wires handlers and middleware into one gin engine.
type Router struct {
	usersService   handler.UsersService
	examService    handler.ExamService
	tokenManager   model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	usersService handler.UsersService,
	examService handler.ExamService,
	tokenManager model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		usersService:   usersService,
		examService:    examService,
		tokenManager:   tokenManager,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the route table. Exam and certificate routes require a session.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenManager, r.contextManager, r.logger)

	usersHandler := handler.NewUsers(r.usersService, r.logger)
	examHandler := handler.NewExam(r.examService, r.contextManager, r.logger)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(logging.Handle, gin.CustomRecoveryWithWriter(io.Discard, r.handlePanic))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := engine.Group("/api")
	api.GET("/questions", examHandler.Questions)
	api.POST("/register", usersHandler.Register)
	api.POST("/login", usersHandler.Login)

	authed := api.Group("", authenticate.Handle)
	authed.POST("/exam", examHandler.Submit)
	authed.GET("/certificate", examHandler.Certificate)

	return engine
}

func (r *Router) handlePanic(c *gin.Context, recovered any) {
	r.logger.Error("HTTP handler panicked",
		"path", c.Request.URL.Path,
		"panic", fmt.Sprint(recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
