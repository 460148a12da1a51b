package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
)

// MeController reports the identity behind the caller's session.
type MeController struct{}

func NewMeController() *MeController {
	return &MeController{}
}

func (h *MeController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"username": sess.Username,
			"isAdmin":  sess.IsAdmin,
		})
	}
}
