package controller

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
)

// EventPusher delivers an event to a user's live connection, if any.
type EventPusher interface {
	Push(userID string, event any) bool
}

// TranscriptionCallbackController accepts the speech-to-text worker's
// out-of-band callback, correlates it through the pending-job table and
// pushes the result to the originating user's current connection only.
// The text is never persisted as a chat message and never sent to the
// other participant; a stale or replayed callback is logged and dropped
// without surfacing to the user.
type TranscriptionCallbackController struct {
	sharedSecret []byte
	store        *correlation.Store
	pusher       EventPusher
	logger       *zap.Logger
}

func NewTranscriptionCallbackController(sharedSecret string, store *correlation.Store, pusher EventPusher, logger *zap.Logger) *TranscriptionCallbackController {
	return &TranscriptionCallbackController{
		sharedSecret: []byte(sharedSecret),
		store:        store,
		pusher:       pusher,
		logger:       logger,
	}
}

type callbackRequest struct {
	Secret string `json:"secret"`
	JobKey string `json:"job_key"`
	Text   string `json:"text"`
}

func (h *TranscriptionCallbackController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Secret), h.sharedSecret) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		job, ok := h.store.Resolve(req.JobKey)
		if !ok {
			// Unknown, already fulfilled, or expired; the recording user
			// simply never sees a transcription and may re-record.
			h.logger.Info("dropping unmatched transcription callback",
				zap.String("jobKey", req.JobKey))
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
			return
		}

		text := strings.TrimSpace(req.Text)
		if !h.pusher.Push(job.Username, realtime.NewTranscriptionEvent(job.ConversationID, text)) {
			h.logger.Info("transcription result dropped, user offline",
				zap.String("user", job.Username),
				zap.Int64("conversationId", job.ConversationID))
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
