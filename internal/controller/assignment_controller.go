package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/middleware"
	"github.com/lamngoc217/classvault/internal/service"
	"github.com/rs/zerolog/log"
)

type AssignmentController struct {
	assignmentService service.AssignmentService
}

func NewAssignmentController(assignmentService service.AssignmentService) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService}
}

// ListAssignments godoc
// @Summary List the caller's quiz assignments
// @Description Returns every quiz assigned to the calling student, newest first, with the quiz header embedded.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AssignmentResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quiz-assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	p := middleware.CurrentPrincipal(ctx)
	assignments, err := c.assignmentService.ListAssignments(p)
	if err != nil {
		log.Error().Err(err).Msg("ListAssignments: Service error")
		respondServiceError(ctx, err, "Failed to list assignments")
		return
	}
	ctx.JSON(http.StatusOK, assignments)
}

// SubmitAssignment godoc
// @Summary Submit answers for an assignment
// @Description Scores the submission server-side and marks the assignment submitted. Each assignment accepts exactly one submission.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment_id path string true "Assignment ID"
// @Param submission body dto.AssignmentSubmitDTO true "Answers keyed by question id"
// @Success 200 {object} dto.SubmitResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Failure 409 {object} dto.ErrorResponse "Assignment was already submitted"
// @Router /quiz-assignments/{assignment_id}/submit [post]
func (c *AssignmentController) SubmitAssignment(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "assignment_id")
	if !ok {
		return
	}
	var req dto.AssignmentSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	result, err := c.assignmentService.Submit(p, id, req)
	if err != nil {
		log.Error().Err(err).Msg("SubmitAssignment: Service error")
		respondServiceError(ctx, err, "Failed to submit assignment")
		return
	}
	ctx.JSON(http.StatusOK, result)
}
