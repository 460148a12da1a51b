package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/usecase"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// GetMessageController serves one history page per request. The before_id
// query parameter is the exclusive cursor; clients advance it to the minimum
// id of the page they just received.
type GetMessageController struct {
	UC *usecase.GetMessageUseCase
}

func NewGetMessageController(repo repository.ChatRepository) *GetMessageController {
	return &GetMessageController{UC: usecase.NewGetMessageUseCase(repo)}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
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

		var beforeID int64
		if v := c.Query("before_id"); v != "" {
			beforeID, err = strconv.ParseInt(v, 10, 64)
			if err != nil || beforeID <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "before_id must be a positive integer"})
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, usecase.GetMessageInput{
			ConversationID: chatID,
			RequesterID:    sess.UserID,
			BeforeID:       beforeID,
		})
		if err != nil {
			respondUseCaseError(c, err)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, gin.H{
				"id":        m.ID,
				"sender":    m.Sender,
				"text":      m.Text,
				"timestamp": m.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out, "count": len(out)})
	}
}
