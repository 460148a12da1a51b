package usecase

import (
	"context"
	"fmt"

	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/realtime"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// EventPusher delivers an event to a user's live connection, if any.
// Delivery is best-effort; false means the event was dropped.
type EventPusher interface {
	Push(userID string, event any) bool
}

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID int64
	SenderID       int64
	Text           string
}

// SendMessageUseCase routes an outbound message: membership check, length
// validation, persist (which assigns id and timestamp), then best-effort
// push to both participants' live connections. Persist strictly precedes
// push so a recipient never sees a message that was lost.
type SendMessageUseCase struct {
	Repo   repository.ChatRepository
	Pusher EventPusher
}

func NewSendMessageUseCase(repo repository.ChatRepository, pusher EventPusher) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Pusher: pusher}
}

// Execute persists a new message for a conversation and notifies live peers.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == 0 || in.SenderID == 0 {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}

	text, err := chat.ValidateText(in.Text)
	if err != nil {
		return nil, err
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msg, err := uc.Repo.AppendMessage(ctx, in.ConversationID, in.SenderID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Pusher != nil {
		event := realtime.NewMessageEvent(msg.ConversationID, msg.ID, msg.Sender, msg.Text, msg.CreatedAt)
		if peer, err := uc.Repo.OtherParticipant(ctx, in.ConversationID, in.SenderID); err == nil {
			_ = uc.Pusher.Push(peer.Username, event)
		}
		// Echo to the sender so their other views stay consistent.
		_ = uc.Pusher.Push(msg.Sender, event)
	}

	return &msg, nil
}
