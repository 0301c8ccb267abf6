package repository

import (
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	FindByQuiz(p policy.Principal, quizID uuid.UUID) ([]model.QuizQuestion, error)

	// FindByQuizPrivileged reads question rows without row rules, for
	// server-side scoring. Correct answers must never cross the student
	// boundary, so callers keep the rows to themselves.
	FindByQuizPrivileged(quizID uuid.UUID) ([]model.QuizQuestion, error)
}

type questionRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewQuestionRepository(db *gorm.DB, rules *policy.Engine) QuestionRepository {
	return &questionRepository{db: db, rules: rules}
}

func (r *questionRepository) FindByQuiz(p policy.Principal, quizID uuid.UUID) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.db.
		Scopes(r.rules.Scope(p, "quiz_questions", policy.OpSelect)).
		Where("quiz_questions.quiz_id = ?", quizID).
		Order("quiz_questions.order_idx ASC").
		Find(&questions).Error
	return questions, err
}

func (r *questionRepository) FindByQuizPrivileged(quizID uuid.UUID) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.db.
		Where("quiz_questions.quiz_id = ?", quizID).
		Order("quiz_questions.order_idx ASC").
		Find(&questions).Error
	return questions, err
}
