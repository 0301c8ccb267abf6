package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/middleware"
	"github.com/lamngoc217/classvault/internal/service"
	"github.com/rs/zerolog/log"
)

type ProfileController struct {
	profileService service.ProfileService
}

func NewProfileController(profileService service.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Description Returns the caller's role and standard; both are null until a profile has been saved.
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	p := middleware.CurrentPrincipal(ctx)
	profile, err := c.profileService.Get(p)
	if err != nil {
		log.Error().Err(err).Msg("GetProfile: Service error")
		respondServiceError(ctx, err, "Failed to retrieve profile")
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Create or replace the caller's profile
// @Description Sets the caller's role (teacher or student) and, for students, the standard used to target quiz sends.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body dto.ProfileUpdateDTO true "Profile data"
// @Success 200 {object} dto.ProfileResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	var req dto.ProfileUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	profile, err := c.profileService.Upsert(p, req)
	if err != nil {
		log.Error().Err(err).Msg("UpdateProfile: Service error")
		respondServiceError(ctx, err, "Failed to save profile")
		return
	}
	ctx.JSON(http.StatusOK, profile)
}
