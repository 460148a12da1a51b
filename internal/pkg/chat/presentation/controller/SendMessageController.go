package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/usecase"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// SendMessageController handles the send-message endpoint (one controller per
// endpoint). Sends are synchronous: the message is persisted and pushed
// before the HTTP response, so a 200 means the message exists.
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(repo repository.ChatRepository, registry *realtime.Registry) *SendMessageController {
	return &SendMessageController{UC: usecase.NewSendMessageUseCase(repo, registry)}
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
		if err != nil || chatID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId must be a positive integer"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			SenderID:       sess.UserID,
			Text:           req.Text,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        msg.ID,
			"chat_id":   msg.ConversationID,
			"sender":    msg.Sender,
			"text":      msg.Text,
			"timestamp": msg.CreatedAt,
		})
	}
}

// respondUseCaseError maps domain errors to HTTP statuses for every chat
// endpoint.
func respondUseCaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this chat"})
	case errors.Is(err, chat.ErrInvalidText):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
