package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QuizStatusDraft = "draft"
	QuizStatusSent  = "sent"
)

// Quiz is a teacher-authored quiz. It starts as a private draft and moves to
// sent exactly once; sending is also the only place due_at and sent_at are
// written, which the chk_quizzes_times constraint pins down at the schema
// level. A sent quiz is immutable apart from its assignments.
type Quiz struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TeacherID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Title        string         `gorm:"not null" json:"title"`
	DocumentName string         `json:"document_name,omitempty"`
	Standard     int            `gorm:"not null;check:chk_quizzes_standard,standard BETWEEN 1 AND 12" json:"standard"`
	TotalMarks   int            `gorm:"not null" json:"total_marks"`
	Status       string         `gorm:"not null;default:'draft';index;check:chk_quizzes_status,status IN ('draft','sent')" json:"status"`
	DueAt        *time.Time     `gorm:"check:chk_quizzes_times,status = 'sent' OR (due_at IS NULL AND sent_at IS NULL)" json:"due_at,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
