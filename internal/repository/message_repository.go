package repository

import (
	"github.com/google/uuid"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Append(p policy.Principal, msg *model.Message) error
	FindBySession(p policy.Principal, sessionID uuid.UUID) ([]model.Message, error)
}

type messageRepository struct {
	db    *gorm.DB
	rules *policy.Engine
}

func NewMessageRepository(db *gorm.DB, rules *policy.Engine) MessageRepository {
	return &messageRepository{db: db, rules: rules}
}

func (r *messageRepository) Append(p policy.Principal, msg *model.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return r.rules.CheckRow(tx, p, "messages", policy.OpInsert, msg.ID)
	})
}

func (r *messageRepository) FindBySession(p policy.Principal, sessionID uuid.UUID) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.
		Scopes(r.rules.Scope(p, "messages", policy.OpSelect)).
		Where("messages.session_id = ?", sessionID).
		Order("messages.created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
