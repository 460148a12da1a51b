package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	authport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/adapter"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/presentation/controller"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes. The websocket route skips the session middleware: the socket
// authenticates itself via its first frame.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, adminUsername string, registry *realtime.Registry, sessions authport.SessionStore, logger *zap.Logger) {
	repo := adapter.NewPgChatRepository(pool, adminUsername)

	sendMsgCtl := controller.NewSendMessageController(repo, registry)
	getMsgCtl := controller.NewGetMessageController(repo)
	listChatsCtl := controller.NewListChatsController(repo)
	markReadCtl := controller.NewMarkReadController(repo)
	socketCtl := controller.NewChatSocketController(repo, registry, sessions, logger)

	// GET /api/v1/chat/ws -> websocket endpoint for realtime chat
	g.GET("/chat/ws", socketCtl.Handle())

	authed := g.Group("", middleware.RequireSession(sessions))

	// POST /api/v1/chat/:chatId -> send a message into a chat
	authed.POST("/chat/:chatId", sendMsgCtl.Handle())

	// GET /api/v1/chat/:chatId/messages -> fetch a page of messages
	authed.GET("/chat/:chatId/messages", getMsgCtl.Handle())

	// POST /api/v1/chat/:chatId/read -> mark the chat read up to now
	authed.POST("/chat/:chatId/read", markReadCtl.Handle())

	// GET /api/v1/chats -> the caller's conversation list
	authed.GET("/chats", listChatsCtl.Handle())
}
