package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	authport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/usecase"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

const (
	authTimeout        = 10 * time.Second
	defaultReadTimeout = 60 * time.Second
)

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic. The first frame must authenticate the socket; after that one
// long-lived read loop per connection routes message frames and keeps the
// read deadline fresh. A connection that goes silent past the deadline is
// torn down and unregistered (only if still authoritative).
type ChatSocketController struct {
	registry        *realtime.Registry
	sessions        authport.SessionStore
	sendMessageUC   *usecase.SendMessageUseCase
	logger          *zap.Logger
	inflightTimeout time.Duration
}

func NewChatSocketController(repo repository.ChatRepository, registry *realtime.Registry, sessions authport.SessionStore, logger *zap.Logger) *ChatSocketController {
	return &ChatSocketController{
		registry:        registry,
		sessions:        sessions,
		sendMessageUC:   usecase.NewSendMessageUseCase(repo, registry),
		logger:          logger,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The service sits behind a TLS-terminating proxy that pins origins.
		return true
	},
}

type inboundFrame struct {
	Type   string `json:"type"`
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
	Text   string `json:"text,omitempty"`
}

type ackFrame struct {
	Type string `json:"type"`
}

// Handle upgrades HTTP connections to websocket and processes frames until
// the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		sess, ok := ctl.authenticate(c.Request.Context(), ws)
		if !ok {
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "auth required"),
				time.Now().Add(time.Second))
			_ = ws.Close()
			return
		}

		conn := realtime.NewConnection(sess.Username, ws)
		ctl.registry.Attach(conn)
		conn.Start()
		defer func() {
			ctl.registry.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := realtime.Encode(ackFrame{Type: realtime.EventTypeConnected}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					ctl.logger.Debug("websocket read ended", zap.String("user", sess.Username), zap.Error(err))
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "message":
				ctl.handleMessage(c, conn, sess, frame)
			case "pong":
				// Deadline already refreshed above.
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// authenticate waits for the client's auth frame and resolves its token.
func (ctl *ChatSocketController) authenticate(ctx context.Context, ws *websocket.Conn) (authport.Session, bool) {
	_ = ws.SetReadDeadline(time.Now().Add(authTimeout))
	_, data, err := ws.ReadMessage()
	if err != nil {
		return authport.Session{}, false
	}

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "auth" || frame.Token == "" {
		return authport.Session{}, false
	}

	resolveCtx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()
	sess, err := ctl.sessions.Resolve(resolveCtx, frame.Token)
	if err != nil {
		return authport.Session{}, false
	}
	return sess, true
}

func (ctl *ChatSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, sess authport.Session, frame inboundFrame) {
	if frame.ChatID == 0 {
		ctl.replyError(conn, "bad_request", "chat_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	_, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ChatID,
		SenderID:       sess.UserID,
		Text:           frame.Text,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}
	// Delivery to both participants (sender echo included) already happened
	// inside the use case, after the persist.
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.logger.Error("websocket send failed", zap.Error(err))
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "not a participant in this chat")
	case errors.Is(err, chat.ErrInvalidText):
		ctl.replyError(conn, "bad_request", err.Error())
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	payload, err := realtime.Encode(realtime.ErrorEvent{
		Type:  realtime.EventTypeError,
		Code:  code,
		Error: message,
	})
	if err == nil {
		_ = conn.Send(payload)
	}
}
