package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
)

// fakeChatRepository is an in-memory ChatRepository. Message ids come from a
// single increasing counter, matching the store's append-with-id contract.
type fakeChatRepository struct {
	mu           sync.Mutex
	nextID       int64
	participants map[int64][]chat.Participant // conversationID -> members
	messages     map[int64][]chat.Message
	readMarkers  map[[2]int64]time.Time
	failAppend   error
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{
		nextID:       0,
		participants: make(map[int64][]chat.Participant),
		messages:     make(map[int64][]chat.Message),
		readMarkers:  make(map[[2]int64]time.Time),
	}
}

func (f *fakeChatRepository) addConversation(conversationID int64, members ...chat.Participant) {
	f.participants[conversationID] = members
}

func (f *fakeChatRepository) IsParticipant(_ context.Context, conversationID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants[conversationID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChatRepository) OtherParticipant(_ context.Context, conversationID, userID int64) (chat.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.participants[conversationID] {
		if p.UserID != userID {
			return p, nil
		}
	}
	return chat.Participant{}, chat.ErrNotFound
}

func (f *fakeChatRepository) AppendMessage(_ context.Context, conversationID, senderID int64, text string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return chat.Message{}, f.failAppend
	}
	f.nextID++
	sender := ""
	for _, p := range f.participants[conversationID] {
		if p.UserID == senderID {
			sender = p.Username
		}
	}
	m := chat.Message{
		ID:             f.nextID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Sender:         sender,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	f.messages[conversationID] = append(f.messages[conversationID], m)
	return m, nil
}

func (f *fakeChatRepository) MessagesBefore(_ context.Context, conversationID, beforeID int64, limit int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var page []chat.Message
	all := f.messages[conversationID]
	for i := len(all) - 1; i >= 0 && len(page) < limit; i-- {
		if beforeID > 0 && all[i].ID >= beforeID {
			continue
		}
		page = append(page, all[i])
	}
	for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
		page[i], page[j] = page[j], page[i]
	}
	return page, nil
}

func (f *fakeChatRepository) ConversationWithAdmin(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, members := range f.participants {
		for _, p := range members {
			if p.UserID == userID {
				return id, nil
			}
		}
	}
	return 0, chat.ErrNotFound
}

func (f *fakeChatRepository) ListChats(_ context.Context, userID int64) ([]chat.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Summary
	for id, members := range f.participants {
		for _, p := range members {
			if p.UserID == userID {
				s := chat.Summary{ConversationID: id}
				if msgs := f.messages[id]; len(msgs) > 0 {
					last := msgs[len(msgs)-1]
					s.LastMessage = &last.Text
					s.LastMessageAt = &last.CreatedAt
					marker, marked := f.readMarkers[[2]int64{id, userID}]
					s.Unread = last.SenderID != userID && (!marked || last.CreatedAt.After(marker))
				}
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *fakeChatRepository) UpsertReadMarker(_ context.Context, conversationID, userID int64, viewedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readMarkers[[2]int64{conversationID, userID}] = viewedAt
	return nil
}

// recordingPusher captures pushes per user.
type recordingPusher struct {
	mu     sync.Mutex
	pushes map[string][]any
}

func newRecordingPusher() *recordingPusher {
	return &recordingPusher{pushes: make(map[string][]any)}
}

func (p *recordingPusher) Push(userID string, event any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes[userID] = append(p.pushes[userID], event)
	return true
}

func twoPartyRepo() *fakeChatRepository {
	repo := newFakeChatRepository()
	repo.addConversation(7,
		chat.Participant{ConversationID: 7, UserID: 1, Username: "admin"},
		chat.Participant{ConversationID: 7, UserID: 2, Username: "alice"},
	)
	return repo
}

func TestSendMessageDeliversToPeerWithConversationID(t *testing.T) {
	repo := twoPartyRepo()
	pusher := newRecordingPusher()
	uc := NewSendMessageUseCase(repo, pusher)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 7, SenderID: 2, Text: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.Equal(t, "alice", msg.Sender)

	require.Len(t, pusher.pushes["admin"], 1)
	require.Len(t, pusher.pushes["alice"], 1)
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo := twoPartyRepo()
	pusher := newRecordingPusher()
	uc := NewSendMessageUseCase(repo, pusher)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 7, SenderID: 99, Text: "hi",
	})
	require.ErrorIs(t, err, chat.ErrNotParticipant)
	assert.Empty(t, pusher.pushes, "nothing may be pushed for a rejected send")
}

func TestSendMessageValidatesText(t *testing.T) {
	repo := twoPartyRepo()
	uc := NewSendMessageUseCase(repo, newRecordingPusher())

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, SenderID: 2, Text: "   "})
	require.ErrorIs(t, err, chat.ErrInvalidText)

	_, err = uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 7, SenderID: 2, Text: strings.Repeat("x", chat.MaxMessageLen+1),
	})
	require.ErrorIs(t, err, chat.ErrInvalidText)

	// Exactly at the bound is fine.
	_, err = uc.Execute(context.Background(), SendMessageInput{
		ConversationID: 7, SenderID: 2, Text: strings.Repeat("x", chat.MaxMessageLen),
	})
	require.NoError(t, err)
}

func TestSendMessagePersistFailurePushesNothing(t *testing.T) {
	repo := twoPartyRepo()
	repo.failAppend = errors.New("connection refused")
	pusher := newRecordingPusher()
	uc := NewSendMessageUseCase(repo, pusher)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: 7, SenderID: 2, Text: "hi"})
	require.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, pusher.pushes)
}
