package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/middleware"
	"github.com/lamngoc217/classvault/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService service.QuizService
}

func NewQuizController(quizService service.QuizService) *QuizController {
	return &QuizController{quizService: quizService}
}

// CreateQuiz godoc
// @Summary Create a draft quiz with its questions
// @Description Teachers only. The quiz starts in draft status and is invisible to students until sent.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quiz body dto.QuizCreateDTO true "Quiz to create"
// @Success 201 {object} dto.QuizDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a teacher"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req dto.QuizCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	quiz, err := c.quizService.CreateQuiz(p, req)
	if err != nil {
		log.Error().Err(err).Msg("CreateQuiz: Service error")
		respondServiceError(ctx, err, "Failed to create quiz")
		return
	}
	ctx.JSON(http.StatusCreated, quiz)
}

// ListQuizzes godoc
// @Summary List the caller's quizzes
// @Description Returns the quizzes the caller teaches, newest first, with question counts.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.QuizSummaryDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	p := middleware.CurrentPrincipal(ctx)
	quizzes, err := c.quizService.ListQuizzes(p)
	if err != nil {
		log.Error().Err(err).Msg("ListQuizzes: Service error")
		respondServiceError(ctx, err, "Failed to list quizzes")
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// GetQuiz godoc
// @Summary Fetch one quiz with its questions
// @Description Teachers see their own quizzes including correct answers. Students see quizzes assigned to them with answers redacted.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} dto.QuizDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz id format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "quiz_id")
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	quiz, err := c.quizService.GetQuiz(p, id)
	if err != nil {
		respondServiceError(ctx, err, "Failed to fetch quiz")
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// UpdateQuiz godoc
// @Summary Update a draft quiz
// @Description Only the owning teacher may edit, and only while the quiz is still in draft. Replacing questions swaps the full set.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Param quiz body dto.QuizUpdateDTO true "Fields to update"
// @Success 200 {object} dto.QuizDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 409 {object} dto.ErrorResponse "Quiz is no longer in draft"
// @Router /quizzes/{quiz_id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuizUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	quiz, err := c.quizService.UpdateQuiz(p, id, req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to update quiz")
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// SendQuiz godoc
// @Summary Send a draft quiz to every student of its standard
// @Description Flips the quiz to sent, stamps the due date, and creates one assignment per matching student. All or nothing: if any assignment fails the quiz stays draft.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Param send body dto.QuizSendDTO true "Send parameters"
// @Success 200 {object} dto.QuizSendResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 409 {object} dto.ErrorResponse "Quiz was already sent"
// @Router /quizzes/{quiz_id}/send [post]
func (c *QuizController) SendQuiz(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "quiz_id")
	if !ok {
		return
	}
	var req dto.QuizSendDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	result, err := c.quizService.SendQuiz(p, id, req)
	if err != nil {
		log.Error().Err(err).Msg("SendQuiz: Service error")
		respondServiceError(ctx, err, "Failed to send quiz")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// QuizResults godoc
// @Summary List the assignments of a quiz with submission state
// @Description Owning teacher only. Shows each student's status, score and submitted answers.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {array} dto.AssignmentResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz id format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Router /quizzes/{quiz_id}/assignments [get]
func (c *QuizController) QuizResults(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "quiz_id")
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	results, err := c.quizService.QuizResults(p, id)
	if err != nil {
		respondServiceError(ctx, err, "Failed to fetch quiz results")
		return
	}
	ctx.JSON(http.StatusOK, results)
}
