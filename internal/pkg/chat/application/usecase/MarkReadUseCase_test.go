package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
)

func TestMarkReadRejectsNonParticipant(t *testing.T) {
	repo := twoPartyRepo()
	uc := NewMarkReadUseCase(repo)

	err := uc.Execute(context.Background(), MarkReadInput{ConversationID: 7, UserID: 99})
	require.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestMarkReadClearsUnreadFlag(t *testing.T) {
	repo := twoPartyRepo()
	sender := NewSendMessageUseCase(repo, nil)
	_, err := sender.Execute(context.Background(), SendMessageInput{ConversationID: 7, SenderID: 2, Text: "hi"})
	require.NoError(t, err)

	list := NewListChatsUseCase(repo)
	chats, err := list.Execute(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].Unread, "peer message with no marker is unread")

	require.NoError(t, NewMarkReadUseCase(repo).Execute(context.Background(), MarkReadInput{ConversationID: 7, UserID: 1}))

	chats, err = list.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, chats[0].Unread)

	// The sender's own message never counts as unread for them.
	chats, err = list.Execute(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, chats[0].Unread)
}
