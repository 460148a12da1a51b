package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	repository "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/persistence/repository/port"
)

// MarkReadInput identifies which conversation the user just viewed.
type MarkReadInput struct {
	ConversationID int64
	UserID         int64
}

// MarkReadUseCase upserts the viewer's read marker to now. Routing never
// touches read state; this is the explicit operation invoked by the viewing
// side.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) error {
	if in.ConversationID == 0 || in.UserID == 0 {
		return fmt.Errorf("conversationId and userId are required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return chat.ErrNotParticipant
	}

	if err := uc.Repo.UpsertReadMarker(ctx, in.ConversationID, in.UserID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
