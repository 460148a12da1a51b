package usecase

import (
	"context"
	"fmt"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// ListChatsUseCase returns the conversation list for a user: one row per
// conversation with the other participant, a last-message preview and an
// unread flag. For the admin this is the full multiplexing index.
type ListChatsUseCase struct {
	Repo repository.ChatRepository
}

func NewListChatsUseCase(repo repository.ChatRepository) *ListChatsUseCase {
	return &ListChatsUseCase{Repo: repo}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, userID int64) ([]chat.Summary, error) {
	if userID == 0 {
		return nil, fmt.Errorf("userId is required")
	}
	chats, err := uc.Repo.ListChats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return chats, nil
}
