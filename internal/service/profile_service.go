package service

import (
	"errors"
	"fmt"

	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProfileService interface {
	Get(p policy.Principal) (*dto.ProfileResponseDTO, error)
	Upsert(p policy.Principal, req dto.ProfileUpdateDTO) (*dto.ProfileResponseDTO, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// Get returns the caller's profile, or null fields when none has been saved
// yet. A fresh account is not an error.
func (s *profileService) Get(p policy.Principal) (*dto.ProfileResponseDTO, error) {
	profile, err := s.profileRepo.FindByUser(p)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ProfileResponseDTO{}, nil
		}
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return profileToDTO(profile), nil
}

func (s *profileService) Upsert(p policy.Principal, req dto.ProfileUpdateDTO) (*dto.ProfileResponseDTO, error) {
	// Binding checks role and range; the pairing is checked here.
	if req.Role == model.RoleStudent && req.Standard == nil {
		return nil, fmt.Errorf("%w: students must provide a standard", ErrValidation)
	}
	if req.Role == model.RoleTeacher && req.Standard != nil {
		return nil, fmt.Errorf("%w: teachers do not have a standard", ErrValidation)
	}
	profile := model.Profile{
		UserID:   p.ID,
		Role:     req.Role,
		Standard: req.Standard,
	}
	if err := s.profileRepo.Upsert(p, &profile); err != nil {
		log.Error().Err(err).Str("user_id", p.ID.String()).Msg("Failed to upsert profile")
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	return profileToDTO(&profile), nil
}

func profileToDTO(profile *model.Profile) *dto.ProfileResponseDTO {
	updatedAt := profile.UpdatedAt
	return &dto.ProfileResponseDTO{
		Role:      &profile.Role,
		Standard:  profile.Standard,
		UpdatedAt: &updatedAt,
	}
}
