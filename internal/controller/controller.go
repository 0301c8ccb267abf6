package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/service"
	"gorm.io/gorm"
)

// parseUUIDParam reads a uuid path parameter, answering 400 itself when the
// value does not parse.
func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors onto HTTP statuses. Denied rows
// arrive as ErrNotFound and answer 404, exactly like missing rows; the API
// never distinguishes the two.
func respondServiceError(ctx *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrTeacherOnly):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrQuizNotDraft),
		errors.Is(err, service.ErrQuizAlreadySent),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, gorm.ErrDuplicatedKey):
		status = http.StatusConflict
	}
	ctx.JSON(status, dto.ErrorResponse{Message: msg, Details: []string{err.Error()}})
}
