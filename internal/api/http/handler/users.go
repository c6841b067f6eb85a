package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/service"
)

// UsersService defines registration and login operations.
type UsersService interface {
	Register(ctx context.Context, username string) (model.User, error)
	Login(ctx context.Context, username, password string) (service.LoginResult, error)
}

// Users handles registration and login endpoints.
type Users struct {
	usersService UsersService
	logger       *logger.Logger
}

// NewUsers creates a new Users handler.
func NewUsers(usersService UsersService, logger *logger.Logger) *Users {
	return &Users{usersService: usersService, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
}

type registerResponse struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	RegisteredDate string `json:"registered_date"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Passed bool   `json:"passed"`
}

// Register creates a user and returns the generated password once.
func (h *Users) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	user, err := h.usersService.Register(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Info("Users handler: registration failed",
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Username:       user.Username,
		Password:       user.Password,
		RegisteredDate: user.RegisteredDate,
	})
}

// Login checks credentials and returns a session token.
func (h *Users) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	res, err := h.usersService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: res.Token, Passed: res.Passed})
}
