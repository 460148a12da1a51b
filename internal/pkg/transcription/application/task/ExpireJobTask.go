package task

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	qport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
)

// ExpireJobTaskType is the queue task name for sweeping a pending
// transcription job whose callback never arrived.
const ExpireJobTaskType = "transcription:expire_job"

// ExpireJobTaskPayload is the JSON payload transported via the queue.
type ExpireJobTaskPayload struct {
	JobKey string `json:"jobKey"`
}

// EnqueueExpireJob schedules the expiry sweep for a freshly issued job,
// delayed by the job's lifetime. The handler is idempotent, so redelivery
// after a fulfilled callback is harmless.
func EnqueueExpireJob(ctx context.Context, client qport.Client, jobKey string, ttl time.Duration) error {
	payload, err := json.Marshal(ExpireJobTaskPayload{JobKey: jobKey})
	if err != nil {
		return err
	}
	_, err = client.Enqueue(ctx, qport.Task{Type: ExpireJobTaskType, Payload: payload},
		qport.EnqueueOption{Queue: "transcription", ProcessIn: ttl})
	return err
}

// RegisterExpireJobTask binds the expiry handler to the provided server.
func RegisterExpireJobTask(srv qport.Server, store *correlation.Store, logger *zap.Logger) {
	srv.Register(ExpireJobTaskType, func(ctx context.Context, t qport.Task) error {
		var p ExpireJobTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		if store.Expire(p.JobKey) {
			logger.Info("expired pending transcription job",
				zap.String("jobKey", p.JobKey))
		}
		return nil
	})
}
