package dto

import "time"

// ProfileUpdateDTO creates or replaces the caller's profile.
type ProfileUpdateDTO struct {
	Role     string `json:"role" binding:"required,oneof=teacher student"`
	Standard *int   `json:"standard" binding:"omitempty,min=1,max=12"`
}

// ProfileResponseDTO mirrors the profile row; both fields are null until the
// user has saved a profile.
type ProfileResponseDTO struct {
	Role      *string    `json:"role"`
	Standard  *int       `json:"standard"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
