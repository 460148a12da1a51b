package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/usecase"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// ListChatsController returns the caller's conversation list. For the admin
// this is every user conversation; for a regular user it is at most their
// single chat with the admin.
type ListChatsController struct {
	UC *usecase.ListChatsUseCase
}

func NewListChatsController(repo repository.ChatRepository) *ListChatsController {
	return &ListChatsController{UC: usecase.NewListChatsUseCase(repo)}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		chats, err := h.UC.Execute(ctx, sess.UserID)
		if err != nil {
			respondUseCaseError(c, err)
			return
		}
		if chats == nil {
			chats = []chat.Summary{}
		}
		c.JSON(http.StatusOK, chats)
	}
}
