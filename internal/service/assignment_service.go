package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AssignmentService interface {
	ListAssignments(p policy.Principal) ([]dto.AssignmentResponseDTO, error)
	Submit(p policy.Principal, id uuid.UUID, req dto.AssignmentSubmitDTO) (*dto.SubmitResultDTO, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	questionRepo   repository.QuestionRepository
}

func NewAssignmentService(assignmentRepo repository.AssignmentRepository, questionRepo repository.QuestionRepository) AssignmentService {
	return &assignmentService{assignmentRepo: assignmentRepo, questionRepo: questionRepo}
}

func (s *assignmentService) ListAssignments(p policy.Principal) ([]dto.AssignmentResponseDTO, error) {
	assignments, err := s.assignmentRepo.FindAllByStudent(p)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	resp := make([]dto.AssignmentResponseDTO, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		resp[i] = dto.AssignmentResponseDTO{
			ID:          a.ID,
			QuizID:      a.QuizID,
			Status:      a.Status,
			Score:       a.Score,
			SubmittedAt: a.SubmittedAt,
			CreatedAt:   a.CreatedAt,
			Quiz: dto.QuizBriefDTO{
				ID:         a.Quiz.ID,
				Title:      a.Quiz.Title,
				Standard:   a.Quiz.Standard,
				TotalMarks: a.Quiz.TotalMarks,
				DueAt:      a.Quiz.DueAt,
			},
		}
	}
	return resp, nil
}

// Submit grades the student's answers server-side and records them together
// with the pending→submitted transition. Submitting twice is rejected; the
// first submission always stands.
func (s *assignmentService) Submit(p policy.Principal, id uuid.UUID, req dto.AssignmentSubmitDTO) (*dto.SubmitResultDTO, error) {
	assignment, err := s.assignmentRepo.FindByID(p, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching assignment: %w", err)
	}
	if assignment.Status == model.AssignmentStatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	// Correct answers never leave the server: scoring reads the question
	// rows with privileged access and compares indices right here.
	questions, err := s.questionRepo.FindByQuizPrivileged(assignment.QuizID)
	if err != nil {
		return nil, fmt.Errorf("fetching questions for scoring: %w", err)
	}
	score := scoreAnswers(questions, req.Answers)

	submittedAt := time.Now()
	won, err := s.assignmentRepo.Submit(p, id, req.Answers, score, submittedAt)
	if err != nil {
		log.Error().Err(err).Str("assignment_id", id.String()).Msg("Failed to record submission")
		return nil, fmt.Errorf("recording submission: %w", err)
	}
	if !won {
		// The status check above raced with another submission.
		return nil, ErrAlreadySubmitted
	}

	totalMarks := 0
	for i := range questions {
		totalMarks += questions[i].Marks
	}
	return &dto.SubmitResultDTO{
		AssignmentID: id,
		Status:       model.AssignmentStatusSubmitted,
		Score:        score,
		TotalMarks:   totalMarks,
		SubmittedAt:  submittedAt,
	}, nil
}

// scoreAnswers awards each question's marks when the chosen option index
// matches the recorded correct index. Answers for unknown question ids are
// ignored rather than rejected.
func scoreAnswers(questions []model.QuizQuestion, answers map[string]int) int {
	score := 0
	for i := range questions {
		q := &questions[i]
		if chosen, ok := answers[q.ID.String()]; ok && chosen == q.CorrectAnswer {
			score += q.Marks
		}
	}
	return score
}
