package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService interface {
	CreateQuiz(p policy.Principal, req dto.QuizCreateDTO) (*dto.QuizDetailDTO, error)
	ListQuizzes(p policy.Principal) ([]dto.QuizSummaryDTO, error)
	GetQuiz(p policy.Principal, id uuid.UUID) (*dto.QuizDetailDTO, error)
	UpdateQuiz(p policy.Principal, id uuid.UUID, req dto.QuizUpdateDTO) (*dto.QuizDetailDTO, error)
	SendQuiz(p policy.Principal, id uuid.UUID, req dto.QuizSendDTO) (*dto.QuizSendResultDTO, error)
	QuizResults(p policy.Principal, id uuid.UUID) ([]dto.AssignmentResultDTO, error)
}

type quizService struct {
	quizRepo       repository.QuizRepository
	assignmentRepo repository.AssignmentRepository
	profileRepo    repository.ProfileRepository
	rules          *policy.Engine
	db             *gorm.DB // transactions spanning quiz + question + assignment writes
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	assignmentRepo repository.AssignmentRepository,
	profileRepo repository.ProfileRepository,
	rules *policy.Engine,
	db *gorm.DB,
) QuizService {
	return &quizService{
		quizRepo:       quizRepo,
		assignmentRepo: assignmentRepo,
		profileRepo:    profileRepo,
		rules:          rules,
		db:             db,
	}
}

func (s *quizService) CreateQuiz(p policy.Principal, req dto.QuizCreateDTO) (*dto.QuizDetailDTO, error) {
	if err := s.requireTeacher(p); err != nil {
		return nil, err
	}
	questions, totalMarks, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := model.Quiz{
		TeacherID:    p.ID,
		Title:        req.Title,
		DocumentName: req.DocumentName,
		Standard:     req.Standard,
		TotalMarks:   totalMarks,
		Status:       model.QuizStatusDraft,
		Questions:    questions,
	}
	if err := s.quizRepo.Create(p, &quiz); err != nil {
		log.Error().Err(err).Str("teacher_id", p.ID.String()).Msg("Failed to create quiz")
		return nil, fmt.Errorf("creating quiz: %w", err)
	}
	return s.GetQuiz(p, quiz.ID)
}

func (s *quizService) ListQuizzes(p policy.Principal) ([]dto.QuizSummaryDTO, error) {
	quizzes, err := s.quizRepo.FindAllByTeacher(p)
	if err != nil {
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}
	resp := make([]dto.QuizSummaryDTO, len(quizzes))
	for i := range quizzes {
		if err := copier.Copy(&resp[i], &quizzes[i].Quiz); err != nil {
			return nil, fmt.Errorf("preparing quiz summary: %w", err)
		}
		resp[i].QuestionCount = quizzes[i].QuestionCount
	}
	return resp, nil
}

// GetQuiz returns the quiz with its ordered questions. Visibility is the
// row rules' business: the owning teacher or an assigned student get the
// quiz, everyone else gets ErrNotFound. Correct answers are only included
// for the owner.
func (s *quizService) GetQuiz(p policy.Principal, id uuid.UUID) (*dto.QuizDetailDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(p, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	return quizToDetail(quiz, quiz.TeacherID == p.ID)
}

func (s *quizService) UpdateQuiz(p policy.Principal, id uuid.UUID, req dto.QuizUpdateDTO) (*dto.QuizDetailDTO, error) {
	quiz, err := s.quizRepo.FindByID(p, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	if quiz.TeacherID != p.ID {
		// Visible to this principal only through an assignment; for edits
		// that is the same as not existing.
		return nil, ErrNotFound
	}
	if quiz.Status != model.QuizStatusDraft {
		return nil, ErrQuizNotDraft
	}

	updates := map[string]any{"updated_at": time.Now()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}

	var questions []model.QuizQuestion
	if req.Questions != nil {
		var totalMarks int
		questions, totalMarks, err = buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		updates["total_marks"] = totalMarks
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Quiz{}).
			Scopes(s.rules.Scope(p, "quizzes", policy.OpUpdate)).
			Where("quizzes.id = ? AND quizzes.status = ?", id, model.QuizStatusDraft).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The draft check above raced with a send.
			return ErrQuizNotDraft
		}
		if req.Questions == nil {
			return nil
		}
		del := tx.
			Scopes(s.rules.Scope(p, "quiz_questions", policy.OpDelete)).
			Where("quiz_questions.quiz_id = ?", id).
			Delete(&model.QuizQuestion{})
		if del.Error != nil {
			return del.Error
		}
		for i := range questions {
			questions[i].QuizID = id
		}
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
		for i := range questions {
			if err := s.rules.CheckRow(tx, p, "quiz_questions", policy.OpInsert, questions[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuizNotDraft) {
			return nil, err
		}
		log.Error().Err(err).Str("quiz_id", id.String()).Msg("Failed to update quiz")
		return nil, fmt.Errorf("updating quiz: %w", err)
	}
	return s.GetQuiz(p, id)
}

// SendQuiz flips the draft to sent and materializes one pending assignment
// per student of the quiz's standard, all inside one transaction: either the
// full batch lands together with the status flip, or nothing changes. A
// duplicate (quiz, student) pair anywhere in the batch fails the whole send
// with a uniqueness violation.
func (s *quizService) SendQuiz(p policy.Principal, id uuid.UUID, req dto.QuizSendDTO) (*dto.QuizSendResultDTO, error) {
	quiz, err := s.quizRepo.FindByID(p, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	if quiz.TeacherID != p.ID {
		return nil, ErrNotFound
	}
	if quiz.Status != model.QuizStatusDraft {
		return nil, ErrQuizAlreadySent
	}

	students, err := s.profileRepo.StudentsByStandard(quiz.Standard)
	if err != nil {
		return nil, fmt.Errorf("targeting students: %w", err)
	}
	assignments := make([]model.QuizAssignment, 0, len(students))
	for _, student := range students {
		assignments = append(assignments, model.QuizAssignment{
			QuizID:    id,
			StudentID: student.UserID,
			Status:    model.AssignmentStatusPending,
		})
	}

	sentAt := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Quiz{}).
			Scopes(s.rules.Scope(p, "quizzes", policy.OpUpdate)).
			Where("quizzes.id = ? AND quizzes.status = ?", id, model.QuizStatusDraft).
			Updates(map[string]any{
				"status":  model.QuizStatusSent,
				"sent_at": sentAt,
				"due_at":  req.DueAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuizAlreadySent
		}
		if len(assignments) == 0 {
			return nil
		}
		// Privileged write: assignments have no principal-facing insert
		// rule, the ownership check carried by the update above is what
		// admits the send.
		if err := tx.Create(&assignments).Error; err != nil {
			return fmt.Errorf("materializing assignments: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrQuizAlreadySent) {
			log.Error().Err(err).Str("quiz_id", id.String()).Int("students", len(students)).Msg("Quiz send rolled back")
		}
		return nil, err
	}

	log.Info().Str("quiz_id", id.String()).Int("sent_to", len(assignments)).Msg("Quiz sent")
	dueAt := req.DueAt
	return &dto.QuizSendResultDTO{
		QuizID: id,
		Status: model.QuizStatusSent,
		SentTo: len(assignments),
		SentAt: sentAt,
		DueAt:  &dueAt,
	}, nil
}

// QuizResults is the teacher's view over a quiz's assignments. The quiz
// ownership rule admits the caller; the rows themselves are then read with
// privileged access because assignment rules only admit the student.
func (s *quizService) QuizResults(p policy.Principal, id uuid.UUID) ([]dto.AssignmentResultDTO, error) {
	quiz, err := s.quizRepo.FindByID(p, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching quiz: %w", err)
	}
	if quiz.TeacherID != p.ID {
		return nil, ErrNotFound
	}

	assignments, err := s.assignmentRepo.FindAllByQuizPrivileged(id)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	resp := make([]dto.AssignmentResultDTO, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		resp[i] = dto.AssignmentResultDTO{
			ID:          a.ID,
			StudentID:   a.StudentID,
			Status:      a.Status,
			Score:       a.Score,
			Answers:     a.Answers.Data(),
			SubmittedAt: a.SubmittedAt,
			CreatedAt:   a.CreatedAt,
		}
	}
	return resp, nil
}

func (s *quizService) requireTeacher(p policy.Principal) error {
	profile, err := s.profileRepo.FindByUser(p)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherOnly
		}
		return fmt.Errorf("fetching profile: %w", err)
	}
	if profile.Role != model.RoleTeacher {
		return ErrTeacherOnly
	}
	return nil
}

// buildQuestions turns request questions into model rows, pinning the
// zero-based order and checking every correct-answer index against its own
// options list, the one bound the schema does not enforce.
func buildQuestions(reqs []dto.QuizQuestionCreateDTO) ([]model.QuizQuestion, int, error) {
	questions := make([]model.QuizQuestion, 0, len(reqs))
	totalMarks := 0
	for i, q := range reqs {
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, 0, fmt.Errorf("%w: question %d: correct answer index %d is out of range for %d options",
				ErrValidation, i+1, q.CorrectAnswer, len(q.Options))
		}
		questions = append(questions, model.QuizQuestion{
			OrderIdx:      i,
			QuestionText:  q.QuestionText,
			QuestionType:  model.QuestionTypeMCQ,
			Marks:         q.Marks,
			Options:       datatypes.NewJSONSlice(q.Options),
			CorrectAnswer: q.CorrectAnswer,
		})
		totalMarks += q.Marks
	}
	return questions, totalMarks, nil
}

func quizToDetail(quiz *model.Quiz, isOwner bool) (*dto.QuizDetailDTO, error) {
	var detail dto.QuizDetailDTO
	if err := copier.Copy(&detail, quiz); err != nil {
		return nil, fmt.Errorf("preparing quiz response: %w", err)
	}
	detail.Questions = make([]dto.QuestionResponseDTO, len(quiz.Questions))
	for i := range quiz.Questions {
		detail.Questions[i] = questionToDTO(&quiz.Questions[i], isOwner)
	}
	return &detail, nil
}

// questionToDTO maps a question row, dropping the correct answer unless the
// caller owns the quiz. Mapped by hand: redaction is too important to trust
// to reflection.
func questionToDTO(q *model.QuizQuestion, includeAnswer bool) dto.QuestionResponseDTO {
	resp := dto.QuestionResponseDTO{
		ID:           q.ID,
		QuizID:       q.QuizID,
		OrderIdx:     q.OrderIdx,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Marks:        q.Marks,
		Options:      []string(q.Options),
	}
	if includeAnswer {
		answer := q.CorrectAnswer
		resp.CorrectAnswer = &answer
	}
	return resp
}
