package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cacheadapter "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/cache/adapter"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/database"
	objectadapter "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/objectstore/adapter"
	queueadapter "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/adapter"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	authadapter "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/adapter"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/task"

	v1 "github.com/thomaselliottbetz/stt-chat-openai-whisper/cmd/api/router/v1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional in production; env vars may come from the runtime.
		_ = err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	sharedSecret := os.Getenv("SHARED_SECRET")
	if sharedSecret == "" {
		logger.Fatal("SHARED_SECRET environment variable is not set")
	}
	adminUsername := os.Getenv("ADMIN_USERNAME")
	if adminUsername == "" {
		logger.Fatal("ADMIN_USERNAME environment variable is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	connectCancel()
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	cache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		logger.Fatal("connect to redis", zap.Error(err))
	}
	defer func() { _ = cache.Close() }()

	presigner, err := objectadapter.NewS3PresignerFromEnv(ctx)
	if err != nil {
		logger.Fatal("configure object store", zap.Error(err))
	}

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("configure queue client", zap.Error(err))
	}
	defer func() { _ = queueClient.Close() }()

	sessions := authadapter.NewCacheSessionStore(cache)
	registry := realtime.NewRegistry()
	defer registry.Close()
	pending := correlation.NewStore()

	queueServer, err := queueadapter.NewAsynqServer(logger)
	if err != nil {
		logger.Fatal("configure queue server", zap.Error(err))
	}
	task.RegisterExpireJobTask(queueServer, pending, logger)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			logger.Error("queue server stopped", zap.Error(err))
		}
	}()

	// Backstop behind the per-job expiry tasks: sweep anything that outlived
	// its queue-scheduled expiry by a wide margin.
	go task.RunExpirySweeper(ctx, pending, 5*time.Minute, time.Hour, logger)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, v1.Deps{
		Pool:          pool,
		AdminUsername: adminUsername,
		SharedSecret:  sharedSecret,
		Registry:      registry,
		Sessions:      sessions,
		Correlation:   pending,
		Presigner:     presigner,
		Queue:         queueClient,
		Logger:        logger,
	})

	addr := envOr("ADDR", ":8080")
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
