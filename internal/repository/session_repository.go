package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(p policy.Principal, session *model.Session) error
	FindAllByOwner(p policy.Principal) ([]model.Session, error)
	FindByID(p policy.Principal, id uuid.UUID) (*model.Session, error)
	SetAssistantSession(p policy.Principal, id uuid.UUID, token string) error
	Touch(p policy.Principal, id uuid.UUID) error
	Delete(p policy.Principal, id uuid.UUID) error
}

type sessionRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewSessionRepository(db *gorm.DB, rules *policy.Engine) SessionRepository {
	return &sessionRepository{db: db, rules: rules}
}

func (r *sessionRepository) Create(p policy.Principal, session *model.Session) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return r.rules.CheckRow(tx, p, "sessions", policy.OpInsert, session.ID)
	})
}

func (r *sessionRepository) FindAllByOwner(p policy.Principal) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.
		Scopes(r.rules.Scope(p, "sessions", policy.OpSelect)).
		Order("sessions.updated_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) FindByID(p policy.Principal, id uuid.UUID) (*model.Session, error) {
	var session model.Session
	err := r.db.
		Scopes(r.rules.Scope(p, "sessions", policy.OpSelect)).
		Where("sessions.id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) SetAssistantSession(p policy.Principal, id uuid.UUID, token string) error {
	res := r.db.Model(&model.Session{}).
		Scopes(r.rules.Scope(p, "sessions", policy.OpUpdate)).
		Where("sessions.id = ?", id).
		Update("assistant_session_id", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch bumps updated_at so the session list stays ordered by recent
// activity. Best effort: a zero row count only means the session vanished
// between the caller's visibility check and now.
func (r *sessionRepository) Touch(p policy.Principal, id uuid.UUID) error {
	return r.db.Model(&model.Session{}).
		Scopes(r.rules.Scope(p, "sessions", policy.OpUpdate)).
		Where("sessions.id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *sessionRepository) Delete(p policy.Principal, id uuid.UUID) error {
	res := r.db.
		Scopes(r.rules.Scope(p, "sessions", policy.OpDelete)).
		Where("sessions.id = ?", id).
		Delete(&model.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
