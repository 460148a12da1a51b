package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	objectport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/objectstore/port"
	qport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	authport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/presentation/controller"
)

// RegisterRoutes mounts the transcription endpoints. The upload presign route
// requires a session; the callback route is mounted on the bare engine and
// authenticates via the shared secret in its body, since the caller is the
// transcription worker, not a browser.
func RegisterRoutes(
	r *gin.Engine,
	g *gin.RouterGroup,
	sharedSecret string,
	store *correlation.Store,
	presigner objectport.Presigner,
	repo repository.ChatRepository,
	queue qport.Client,
	registry *realtime.Registry,
	sessions authport.SessionStore,
	logger *zap.Logger,
) {
	presignCtl := controller.NewPresignUploadController(store, presigner, repo, queue, logger)
	callbackCtl := controller.NewTranscriptionCallbackController(sharedSecret, store, registry, logger)

	// POST /api/v1/uploads -> mint a presigned upload URL and a job key
	g.POST("/uploads", middleware.RequireSession(sessions), presignCtl.Handle())

	// POST /transcription-callback -> worker delivers the transcript
	r.POST("/transcription-callback", callbackCtl.Handle())
}
