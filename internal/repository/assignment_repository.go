package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	FindAllByStudent(p policy.Principal) ([]model.QuizAssignment, error)
	FindByID(p policy.Principal, id uuid.UUID) (*model.QuizAssignment, error)
	Submit(p policy.Principal, id uuid.UUID, answers map[string]int, score int, submittedAt time.Time) (bool, error)

	// FindAllByQuizPrivileged reads assignment rows without row rules, for
	// the teacher results view. Callers must have checked quiz ownership
	// first; assignment rules themselves only admit the student.
	FindAllByQuizPrivileged(quizID uuid.UUID) ([]model.QuizAssignment, error)
}

type assignmentRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewAssignmentRepository(db *gorm.DB, rules *policy.Engine) AssignmentRepository {
	return &assignmentRepository{db: db, rules: rules}
}

func (r *assignmentRepository) FindAllByStudent(p policy.Principal) ([]model.QuizAssignment, error) {
	var assignments []model.QuizAssignment
	err := r.db.
		Scopes(r.rules.Scope(p, "quiz_assignments", policy.OpSelect)).
		Preload("Quiz", func(db *gorm.DB) *gorm.DB {
			return db.Scopes(r.rules.Scope(p, "quizzes", policy.OpSelect))
		}).
		Order("quiz_assignments.created_at DESC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindByID(p policy.Principal, id uuid.UUID) (*model.QuizAssignment, error) {
	var assignment model.QuizAssignment
	err := r.db.
		Scopes(r.rules.Scope(p, "quiz_assignments", policy.OpSelect)).
		Where("quiz_assignments.id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Submit records answers, score and timestamp in one statement guarded by
// the pending status, so the transition only ever happens once. The bool
// reports whether this call won the transition.
func (r *assignmentRepository) Submit(p policy.Principal, id uuid.UUID, answers map[string]int, score int, submittedAt time.Time) (bool, error) {
	res := r.db.Model(&model.QuizAssignment{}).
		Scopes(r.rules.Scope(p, "quiz_assignments", policy.OpUpdate)).
		Where("quiz_assignments.id = ? AND quiz_assignments.status = ?", id, model.AssignmentStatusPending).
		Updates(map[string]any{
			"status":       model.AssignmentStatusSubmitted,
			"answers":      datatypes.NewJSONType(answers),
			"score":        score,
			"submitted_at": submittedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *assignmentRepository) FindAllByQuizPrivileged(quizID uuid.UUID) ([]model.QuizAssignment, error) {
	var assignments []model.QuizAssignment
	err := r.db.
		Where("quiz_assignments.quiz_id = ?", quizID).
		Order("quiz_assignments.created_at ASC").
		Find(&assignments).Error
	return assignments, err
}
