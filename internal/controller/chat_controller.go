package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lamngoc217/classvault/internal/dto"
	"github.com/lamngoc217/classvault/internal/middleware"
	"github.com/lamngoc217/classvault/internal/service"
	"github.com/rs/zerolog/log"
)

type ChatController struct {
	chatService service.ChatService
}

func NewChatController(chatService service.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// CreateSession godoc
// @Summary Start a new chat session
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.SessionResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [post]
func (c *ChatController) CreateSession(ctx *gin.Context) {
	p := middleware.CurrentPrincipal(ctx)
	session, err := c.chatService.CreateSession(p)
	if err != nil {
		log.Error().Err(err).Msg("CreateSession: Service error")
		respondServiceError(ctx, err, "Failed to create session")
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

// ListSessions godoc
// @Summary List the caller's chat sessions
// @Description Sessions are ordered by most recent activity. Other users' sessions are never included.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SessionResponseDTO
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sessions [get]
func (c *ChatController) ListSessions(ctx *gin.Context) {
	p := middleware.CurrentPrincipal(ctx)
	sessions, err := c.chatService.ListSessions(p)
	if err != nil {
		log.Error().Err(err).Msg("ListSessions: Service error")
		respondServiceError(ctx, err, "Failed to list sessions")
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// DeleteSession godoc
// @Summary Delete a chat session and its messages
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 204 "Session deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid session id format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id} [delete]
func (c *ChatController) DeleteSession(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "session_id")
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	if err := c.chatService.DeleteSession(p, id); err != nil {
		respondServiceError(ctx, err, "Failed to delete session")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListMessages godoc
// @Summary List the messages of a session
// @Description Messages are ordered oldest first. Sessions owned by other users answer 404.
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {array} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid session id format"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "session_id")
	if !ok {
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	msgs, err := c.chatService.Messages(p, id)
	if err != nil {
		respondServiceError(ctx, err, "Failed to list messages")
		return
	}
	ctx.JSON(http.StatusOK, msgs)
}

// AppendMessage godoc
// @Summary Append a message to a session
// @Description Appends one chat turn. The message log is append-only.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param message body dto.MessageCreateDTO true "Message to append"
// @Success 201 {object} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id}/messages [post]
func (c *ChatController) AppendMessage(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "session_id")
	if !ok {
		return
	}
	var req dto.MessageCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	p := middleware.CurrentPrincipal(ctx)
	msg, err := c.chatService.AppendMessage(p, id, req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to append message")
		return
	}
	ctx.JSON(http.StatusCreated, msg)
}
