package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	objectport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/objectstore/port"
	qport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	authport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
	authcontroller "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/presentation/controller"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/adapter"
	chathttp "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/presentation/http"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
	transcriptionhttp "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/presentation/http"
)

// Deps carries the shared infrastructure that version 1 routes are built on.
type Deps struct {
	Pool          *pgxpool.Pool
	AdminUsername string
	SharedSecret  string
	Registry      *realtime.Registry
	Sessions      authport.SessionStore
	Correlation   *correlation.Store
	Presigner     objectport.Presigner
	Queue         qport.Client
	Logger        *zap.Logger
}

// RegisterRoutes mounts all version 1 API routes under /api/v1, plus the
// transcription callback at the engine root.
func RegisterRoutes(r *gin.Engine, d Deps) {
	v1 := r.Group("/api/v1")

	meCtl := authcontroller.NewMeController()
	v1.GET("/me", middleware.RequireSession(d.Sessions), meCtl.Handle())

	chathttp.RegisterRoutes(v1, d.Pool, d.AdminUsername, d.Registry, d.Sessions, d.Logger)

	repo := adapter.NewPgChatRepository(d.Pool, d.AdminUsername)
	transcriptionhttp.RegisterRoutes(r, v1, d.SharedSecret, d.Correlation, d.Presigner,
		repo, d.Queue, d.Registry, d.Sessions, d.Logger)
}
