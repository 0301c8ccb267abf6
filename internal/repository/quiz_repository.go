package repository

import (
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
)

// QuizWithCount is a quiz row joined with its question count, used for
// teacher-facing listings.
type QuizWithCount struct {
	model.Quiz
	QuestionCount int
}

type QuizRepository interface {
	Create(p policy.Principal, quiz *model.Quiz) error
	FindAllByTeacher(p policy.Principal) ([]QuizWithCount, error)
	FindByID(p policy.Principal, id uuid.UUID) (*model.Quiz, error)
	FindByIDWithQuestions(p policy.Principal, id uuid.UUID) (*model.Quiz, error)
}

type quizRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewQuizRepository(db *gorm.DB, rules *policy.Engine) QuizRepository {
	return &quizRepository{db: db, rules: rules}
}

// Create inserts the quiz together with its questions, then verifies every
// written row against the insert rules inside the same transaction, so a
// quiz can never be created under someone else's teacher_id.
func (r *quizRepository) Create(p policy.Principal, quiz *model.Quiz) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		if err := r.rules.CheckRow(tx, p, "quizzes", policy.OpInsert, quiz.ID); err != nil {
			return err
		}
		for i := range quiz.Questions {
			if err := r.rules.CheckRow(tx, p, "quiz_questions", policy.OpInsert, quiz.Questions[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *quizRepository) FindAllByTeacher(p policy.Principal) ([]QuizWithCount, error) {
	var results []QuizWithCount
	err := r.db.Model(&model.Quiz{}).
		Scopes(r.rules.Scope(p, "quizzes", policy.OpSelect)).
		Select("quizzes.*, (SELECT COUNT(*) FROM quiz_questions WHERE quiz_questions.quiz_id = quizzes.id) AS question_count").
		Where("quizzes.teacher_id = ?", p.ID).
		Order("quizzes.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *quizRepository) FindByID(p policy.Principal, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Scopes(r.rules.Scope(p, "quizzes", policy.OpSelect)).
		Where("quizzes.id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindByIDWithQuestions(p policy.Principal, id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.
		Scopes(r.rules.Scope(p, "quizzes", policy.OpSelect)).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.
				Scopes(r.rules.Scope(p, "quiz_questions", policy.OpSelect)).
				Order("quiz_questions.order_idx ASC")
		}).
		Where("quizzes.id = ?", id).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}
