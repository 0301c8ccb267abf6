package dto

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestionCreateDTO is one multiple-choice question inside a quiz
// create or update request. Question order follows slice order.
type QuizQuestionCreateDTO struct {
	QuestionText  string   `json:"question_text" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2,max=6,dive,required"`
	CorrectAnswer int      `json:"correct_answer" binding:"min=0"`
	Marks         int      `json:"marks" binding:"required,gt=0"`
}

// QuizCreateDTO creates a draft quiz with its full question set. Total
// marks are derived from the questions.
type QuizCreateDTO struct {
	Title        string                  `json:"title" binding:"required"`
	DocumentName string                  `json:"document_name"`
	Standard     int                     `json:"standard" binding:"required,min=1,max=12"`
	Questions    []QuizQuestionCreateDTO `json:"questions" binding:"required,min=1,max=20,dive"`
}

// QuizUpdateDTO edits a draft. A non-nil Questions slice replaces the whole
// question set; the due time is not editable here, it is fixed by sending.
type QuizUpdateDTO struct {
	Title     *string                 `json:"title" binding:"omitempty,min=1"`
	Questions []QuizQuestionCreateDTO `json:"questions" binding:"omitempty,min=1,max=20,dive"`
}

type QuizSendDTO struct {
	DueAt time.Time `json:"due_at" binding:"required"`
}

// QuestionResponseDTO hides CorrectAnswer unless the caller owns the quiz.
type QuestionResponseDTO struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	OrderIdx      int       `json:"order_idx"`
	QuestionText  string    `json:"question_text"`
	QuestionType  string    `json:"question_type"`
	Marks         int       `json:"marks"`
	Options       []string  `json:"options"`
	CorrectAnswer *int      `json:"correct_answer,omitempty"`
}

type QuizSummaryDTO struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	DocumentName  string     `json:"document_name,omitempty"`
	Standard      int        `json:"standard"`
	TotalMarks    int        `json:"total_marks"`
	Status        string     `json:"status"`
	QuestionCount int        `json:"question_count"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type QuizDetailDTO struct {
	ID           uuid.UUID             `json:"id"`
	TeacherID    uuid.UUID             `json:"teacher_id"`
	Title        string                `json:"title"`
	DocumentName string                `json:"document_name,omitempty"`
	Standard     int                   `json:"standard"`
	TotalMarks   int                   `json:"total_marks"`
	Status       string                `json:"status"`
	DueAt        *time.Time            `json:"due_at,omitempty"`
	SentAt       *time.Time            `json:"sent_at,omitempty"`
	Questions    []QuestionResponseDTO `json:"questions"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type QuizSendResultDTO struct {
	QuizID uuid.UUID  `json:"quiz_id"`
	Status string     `json:"status"`
	SentTo int        `json:"sent_to"`
	SentAt time.Time  `json:"sent_at"`
	DueAt  *time.Time `json:"due_at,omitempty"`
}
