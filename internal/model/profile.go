package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Profile carries the per-user role and, for students, the school standard
// (grade 1-12) used to target quiz sends. The row is keyed by the
// authenticated user id, so a user can only ever have one profile.
type Profile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      string    `gorm:"not null;index:idx_profiles_role_standard;check:chk_profiles_role,role IN ('teacher','student')" json:"role"`
	Standard  *int      `gorm:"index:idx_profiles_role_standard;check:chk_profiles_standard,standard IS NULL OR (standard BETWEEN 1 AND 12)" json:"standard,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }
