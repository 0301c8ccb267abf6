package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const QuestionTypeMCQ = "mcq"

// QuizQuestion is one multiple-choice question of a quiz. OrderIdx is the
// zero-based position within the quiz; CorrectAnswer is the zero-based index
// into Options. The correct index is validated against the options list at
// the service boundary, not by the schema.
type QuizQuestion struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"quiz_id"`
	OrderIdx      int                         `gorm:"not null" json:"order_idx"`
	QuestionText  string                      `gorm:"type:text;not null" json:"question_text"`
	QuestionType  string                      `gorm:"not null;default:'mcq';check:chk_quiz_questions_type,question_type IN ('mcq')" json:"question_type"`
	Marks         int                         `gorm:"not null" json:"marks"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer int                         `gorm:"not null" json:"correct_answer"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func (QuizQuestion) TableName() string { return "quiz_questions" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
