package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	objectport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/objectstore/port"
	qport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/task"
)

const (
	uploadContentType = "audio/webm"
	defaultUploadTTL  = 5 * time.Minute
	defaultJobTTL     = 10 * time.Minute
)

// PresignUploadController issues one-time upload handles for voice notes.
// The admin must name the target conversation (one socket, many chats); a
// regular user's single conversation with the admin is derived for them.
type PresignUploadController struct {
	store     *correlation.Store
	presigner objectport.Presigner
	repo      repository.ChatRepository
	queue     qport.Client
	logger    *zap.Logger
	jobTTL    time.Duration
	uploadTTL time.Duration
}

func NewPresignUploadController(
	store *correlation.Store,
	presigner objectport.Presigner,
	repo repository.ChatRepository,
	queue qport.Client,
	logger *zap.Logger,
) *PresignUploadController {
	return &PresignUploadController{
		store:     store,
		presigner: presigner,
		repo:      repo,
		queue:     queue,
		logger:    logger,
		jobTTL:    durationFromEnv("JOB_TTL", defaultJobTTL),
		uploadTTL: durationFromEnv("UPLOAD_URL_TTL", defaultUploadTTL),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

type presignRequest struct {
	ChatID *int64 `json:"chat_id"`
}

func (h *PresignUploadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		var req presignRequest
		// Body is optional for regular users.
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conversationID, err := h.resolveConversation(ctx, sess.UserID, sess.IsAdmin, req.ChatID)
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrNotParticipant):
				c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this chat"})
			case errors.Is(err, errChatIDRequired):
				c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id is required for admin uploads"})
			default:
				h.logger.Error("resolve upload conversation", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve conversation"})
			}
			return
		}

		job := h.store.Issue(sess.UserID, sess.Username, conversationID)
		key := fmt.Sprintf("%s/%d/%s.webm", sess.Username, conversationID, job.JobKey)

		url, err := h.presigner.PresignPut(ctx, key, uploadContentType, h.uploadTTL)
		if err != nil {
			h.store.Expire(job.JobKey)
			h.logger.Error("presign upload url", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not presign upload"})
			return
		}

		if err := task.EnqueueExpireJob(ctx, h.queue, job.JobKey, h.jobTTL); err != nil {
			// The job stays correlatable; it just won't be swept on schedule.
			h.logger.Warn("enqueue job expiry", zap.String("jobKey", job.JobKey), zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
	}
}

var errChatIDRequired = errors.New("chat_id required")

func (h *PresignUploadController) resolveConversation(ctx context.Context, userID int64, isAdmin bool, chatID *int64) (int64, error) {
	if isAdmin {
		if chatID == nil || *chatID == 0 {
			return 0, errChatIDRequired
		}
		isParticipant, err := h.repo.IsParticipant(ctx, *chatID, userID)
		if err != nil {
			return 0, err
		}
		if !isParticipant {
			return 0, chat.ErrNotParticipant
		}
		return *chatID, nil
	}
	return h.repo.ConversationWithAdmin(ctx, userID)
}
