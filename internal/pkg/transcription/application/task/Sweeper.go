package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
)

// RunExpirySweeper periodically expires pending jobs older than maxAge. It
// is the backstop behind the per-job queue tasks: if an expiry task is lost
// (redis flush, queue misconfiguration), the coarse sweep still bounds how
// long a stale job can linger. Blocks until ctx is canceled.
func RunExpirySweeper(ctx context.Context, store *correlation.Store, interval, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.ExpireOlderThan(time.Now().Add(-maxAge)); n > 0 {
				logger.Info("swept stale transcription jobs", zap.Int("count", n))
			}
		}
	}
}
