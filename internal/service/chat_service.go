package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/model"
	"github.com/lamngoc217/classvault/internal/policy"
	"github.com/lamngoc217/classvault/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ChatService interface {
	CreateSession(p policy.Principal) (*dto.SessionResponseDTO, error)
	ListSessions(p policy.Principal) ([]dto.SessionResponseDTO, error)
	DeleteSession(p policy.Principal, id uuid.UUID) error
	Messages(p policy.Principal, sessionID uuid.UUID) ([]dto.MessageResponseDTO, error)
	AppendMessage(p policy.Principal, sessionID uuid.UUID, req dto.MessageCreateDTO) (*dto.MessageResponseDTO, error)
	BindAssistantSession(p policy.Principal, sessionID uuid.UUID, token string) error
}

type chatService struct {
	sessionRepo repository.SessionRepository
	messageRepo repository.MessageRepository
}

func NewChatService(sessionRepo repository.SessionRepository, messageRepo repository.MessageRepository) ChatService {
	return &chatService{sessionRepo: sessionRepo, messageRepo: messageRepo}
}

func (s *chatService) CreateSession(p policy.Principal) (*dto.SessionResponseDTO, error) {
	session := model.Session{
		UserID: p.ID,
		Title:  "New Chat",
	}
	if err := s.sessionRepo.Create(p, &session); err != nil {
		log.Error().Err(err).Str("user_id", p.ID.String()).Msg("Failed to create session")
		return nil, fmt.Errorf("creating session: %w", err)
	}
	var resp dto.SessionResponseDTO
	if err := copier.Copy(&resp, &session); err != nil {
		return nil, fmt.Errorf("preparing session response: %w", err)
	}
	return &resp, nil
}

func (s *chatService) ListSessions(p policy.Principal) ([]dto.SessionResponseDTO, error) {
	sessions, err := s.sessionRepo.FindAllByOwner(p)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	resp := make([]dto.SessionResponseDTO, len(sessions))
	for i := range sessions {
		if err := copier.Copy(&resp[i], &sessions[i]); err != nil {
			return nil, fmt.Errorf("preparing session response: %w", err)
		}
	}
	return resp, nil
}

func (s *chatService) DeleteSession(p policy.Principal, id uuid.UUID) error {
	if err := s.sessionRepo.Delete(p, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *chatService) Messages(p policy.Principal, sessionID uuid.UUID) ([]dto.MessageResponseDTO, error) {
	if _, err := s.sessionRepo.FindByID(p, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	msgs, err := s.messageRepo.FindBySession(p, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	resp := make([]dto.MessageResponseDTO, len(msgs))
	for i := range msgs {
		if err := copier.Copy(&resp[i], &msgs[i]); err != nil {
			return nil, fmt.Errorf("preparing message response: %w", err)
		}
	}
	return resp, nil
}

func (s *chatService) AppendMessage(p policy.Principal, sessionID uuid.UUID, req dto.MessageCreateDTO) (*dto.MessageResponseDTO, error) {
	if _, err := s.sessionRepo.FindByID(p, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	msg := model.Message{
		SessionID: sessionID,
		Role:      req.Role,
		Content:   req.Content,
	}
	if err := s.messageRepo.Append(p, &msg); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to append message")
		return nil, fmt.Errorf("appending message: %w", err)
	}
	if err := s.sessionRepo.Touch(p, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to bump session activity")
	}
	var resp dto.MessageResponseDTO
	if err := copier.Copy(&resp, &msg); err != nil {
		return nil, fmt.Errorf("preparing message response: %w", err)
	}
	return &resp, nil
}

// BindAssistantSession stores the external assistant's session token so the
// chat collaborator can resume the conversation later.
func (s *chatService) BindAssistantSession(p policy.Principal, sessionID uuid.UUID, token string) error {
	if err := s.sessionRepo.SetAssistantSession(p, sessionID, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("binding assistant session: %w", err)
	}
	return nil
}
