package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AssignmentStatusPending   = "pending"
	AssignmentStatusSubmitted = "submitted"
)

// QuizAssignment links a sent quiz to one student. The (quiz_id, student_id)
// pair is unique, so re-sending can never silently duplicate an assignment.
// Answers maps question ids to chosen option indices; together with score
// and submitted_at it is written exactly once, by the pending→submitted
// transition, which chk_quiz_assignments_pending mirrors in the schema.
type QuizAssignment struct {
	ID          uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID      uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex:uniq_quiz_assignments_quiz_student" json:"quiz_id"`
	Quiz        Quiz                               `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
	StudentID   uuid.UUID                          `gorm:"type:uuid;not null;index;uniqueIndex:uniq_quiz_assignments_quiz_student" json:"student_id"`
	Status      string                             `gorm:"not null;default:'pending';index;check:chk_quiz_assignments_status,status IN ('pending','submitted')" json:"status"`
	Answers     datatypes.JSONType[map[string]int] `json:"answers"`
	Score       *int                               `gorm:"check:chk_quiz_assignments_pending,status = 'submitted' OR (score IS NULL AND submitted_at IS NULL)" json:"score,omitempty"`
	SubmittedAt *time.Time                         `json:"submitted_at,omitempty"`
	CreatedAt   time.Time                          `json:"created_at"`
}

func (QuizAssignment) TableName() string { return "quiz_assignments" }

func (a *QuizAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
