package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
)

// ExamService defines exam operations.
type ExamService interface {
	Questions() []model.Question
	PassScore() int
	Submit(ctx context.Context, username string, answers map[int]string) (model.ExamResult, error)
	Certificate(ctx context.Context, username string) (model.Certificate, error)
}

// Exam handles question, submission and certificate endpoints.
type Exam struct {
	examService    ExamService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewExam creates a new Exam handler.
func NewExam(examService ExamService, contextManager model.ContextManager, logger *logger.Logger) *Exam {
	return &Exam{examService: examService, contextManager: contextManager, logger: logger}
}

type questionsResponse struct {
	Questions []model.Question `json:"questions"`
	PassScore int              `json:"pass_score"`
}

// submitRequest answers are keyed by question index.
type submitRequest struct {
	Answers map[string]string `json:"answers"`
}

type submitResponse struct {
	Score     int    `json:"score"`
	Passed    bool   `json:"passed"`
	PassScore int    `json:"pass_score"`
	CertID    string `json:"cert_id,omitempty"`
}

// Questions lists the exam questions without answers.
func (h *Exam) Questions(c *gin.Context) {
	c.JSON(http.StatusOK, questionsResponse{
		Questions: h.examService.Questions(),
		PassScore: h.examService.PassScore(),
	})
}

// Submit grades the caller's answers.
func (h *Exam) Submit(c *gin.Context) {
	username, ok := h.contextManager.GetUsernameFromContext(c.Request.Context())
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "missing session")
		return
	}

	var req submitRequest
	if err := bindJSON(c, &req); err != nil {
		abortWithError(c, http.StatusBadRequest, "malformed request body")
		return
	}

	answers := make(map[int]string, len(req.Answers))
	for k, v := range req.Answers {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			abortWithError(c, http.StatusBadRequest, "answer keys must be question indexes")
			return
		}
		answers[i] = v
	}

	res, err := h.examService.Submit(c.Request.Context(), username, answers)
	if err != nil {
		h.logger.Info("Exam handler: submission failed",
			"username", username,
			"error", err.Error())
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Score:     res.Score,
		Passed:    res.Passed,
		PassScore: h.examService.PassScore(),
		CertID:    res.CertID,
	})
}

// Certificate returns the caller's latest passing result.
func (h *Exam) Certificate(c *gin.Context) {
	username, ok := h.contextManager.GetUsernameFromContext(c.Request.Context())
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "missing session")
		return
	}

	cert, err := h.examService.Certificate(c.Request.Context(), username)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, cert)
}
