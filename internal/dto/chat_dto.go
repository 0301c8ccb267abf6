package dto

import (
	"time"

	"github.com/google/uuid"
)

type SessionResponseDTO struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	AssistantSessionID *string   `json:"assistant_session_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type MessageCreateDTO struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type MessageResponseDTO struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
