package dto

import (
	"time"

	"github.com/google/uuid"
)

// QuizBriefDTO is the quiz summary embedded in a student's assignment list.
type QuizBriefDTO struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Standard   int        `json:"standard"`
	TotalMarks int        `json:"total_marks"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

type AssignmentResponseDTO struct {
	ID          uuid.UUID    `json:"id"`
	QuizID      uuid.UUID    `json:"quiz_id"`
	Status      string       `json:"status"`
	Score       *int         `json:"score,omitempty"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Quiz        QuizBriefDTO `json:"quiz"`
}

// AssignmentResultDTO is one row of the teacher's results view, answers
// included.
type AssignmentResultDTO struct {
	ID          uuid.UUID      `json:"id"`
	StudentID   uuid.UUID      `json:"student_id"`
	Status      string         `json:"status"`
	Score       *int           `json:"score,omitempty"`
	Answers     map[string]int `json:"answers,omitempty"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AssignmentSubmitDTO carries the student's answers keyed by question id.
type AssignmentSubmitDTO struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

type SubmitResultDTO struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
	TotalMarks   int       `json:"total_marks"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
