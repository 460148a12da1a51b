package usecase

import (
	"context"
	"fmt"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// PageSize is the fixed number of messages served per history page.
const PageSize = 20

// GetMessageInput carries parameters to fetch one page of a conversation's
// history. BeforeID is the exclusive upper cursor; zero means "latest page".
type GetMessageInput struct {
	ConversationID int64
	RequesterID    int64
	BeforeID       int64
}

// GetMessageUseCase serves reverse-chronological history pages. Because ids
// only increase and the cursor is exclusive over an immutable value,
// concurrent inserts never leak into or corrupt a page captured earlier;
// walking backward via the minimum id of each page visits every message
// exactly once.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

// Execute returns up to PageSize messages older than the cursor, ascending.
// An exhausted history yields an empty page, not an error.
func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID == 0 {
		return nil, fmt.Errorf("conversationId is required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, chat.ErrNotParticipant
	}

	msgs, err := uc.Repo.MessagesBefore(ctx, in.ConversationID, in.BeforeID, PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
