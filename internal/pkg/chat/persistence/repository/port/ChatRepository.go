package repository

import (
	"context"
	"time"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
// The backing store must assign message ids from a strictly increasing
// sequence atomically with the insert; everything here relies on that.
type ChatRepository interface {
	// IsParticipant reports whether userID belongs to the conversation.
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)

	// OtherParticipant returns the peer of userID in the conversation.
	OtherParticipant(ctx context.Context, conversationID, userID int64) (chat.Participant, error)

	// AppendMessage persists a message and returns it with the assigned id
	// and timestamp.
	AppendMessage(ctx context.Context, conversationID, senderID int64, text string) (chat.Message, error)

	// MessagesBefore returns up to limit messages with id < beforeID in
	// ascending id order. beforeID <= 0 means "latest page".
	MessagesBefore(ctx context.Context, conversationID, beforeID int64, limit int) ([]chat.Message, error)

	// ConversationWithAdmin returns the id of the user's conversation with
	// the admin, creating it on first use.
	ConversationWithAdmin(ctx context.Context, userID int64) (int64, error)

	// ListChats returns conversation summaries for the user, newest first.
	ListChats(ctx context.Context, userID int64) ([]chat.Summary, error)

	// UpsertReadMarker records that the user viewed the conversation at the
	// given time. At most one marker exists per (conversation, user).
	UpsertReadMarker(ctx context.Context, conversationID, userID int64, viewedAt time.Time) error
}
