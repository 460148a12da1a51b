package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	qport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/queue/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/middleware"
	authport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
	chat "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/chat/application/domain"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/transcription/application/correlation"
)

type fakeSessionStore struct {
	sessions map[string]authport.Session
}

func (s *fakeSessionStore) Resolve(_ context.Context, token string) (authport.Session, error) {
	sess, ok := s.sessions[token]
	if !ok {
		return authport.Session{}, authport.ErrInvalidSession
	}
	return sess, nil
}

func (s *fakeSessionStore) Put(_ context.Context, token string, sess authport.Session, _ time.Duration) error {
	s.sessions[token] = sess
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type fakePresigner struct {
	fail       bool
	lastExpiry time.Duration
}

func (p *fakePresigner) PresignPut(_ context.Context, key, contentType string, expiry time.Duration) (string, error) {
	p.lastExpiry = expiry
	if p.fail {
		return "", errors.New("presign unavailable")
	}
	return "https://uploads.example/" + key + "?ct=" + contentType, nil
}

type fakeQueueClient struct {
	mu    sync.Mutex
	tasks []qport.Task
	opts  []qport.EnqueueOption
}

func (q *fakeQueueClient) Enqueue(_ context.Context, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	if len(opts) > 0 {
		q.opts = append(q.opts, opts[0])
	}
	return "task-id", nil
}

func (q *fakeQueueClient) Close() error { return nil }

// uploadRepo is the minimal conversation graph the presign route touches:
// admin (user 1) shares chat 7 with alice (user 2).
type uploadRepo struct{}

func (uploadRepo) IsParticipant(_ context.Context, conversationID, userID int64) (bool, error) {
	return conversationID == 7 && (userID == 1 || userID == 2), nil
}

func (uploadRepo) OtherParticipant(_ context.Context, _, _ int64) (chat.Participant, error) {
	return chat.Participant{}, chat.ErrNotFound
}

func (uploadRepo) AppendMessage(_ context.Context, _, _ int64, _ string) (chat.Message, error) {
	return chat.Message{}, errors.New("not used")
}

func (uploadRepo) MessagesBefore(_ context.Context, _, _ int64, _ int) ([]chat.Message, error) {
	return nil, nil
}

func (uploadRepo) ConversationWithAdmin(_ context.Context, userID int64) (int64, error) {
	if userID == 2 {
		return 7, nil
	}
	return 0, errors.New("unknown user")
}

func (uploadRepo) ListChats(_ context.Context, _ int64) ([]chat.Summary, error) { return nil, nil }

func (uploadRepo) UpsertReadMarker(_ context.Context, _, _ int64, _ time.Time) error { return nil }

type presignRig struct {
	router *gin.Engine
	store  *correlation.Store
	queue  *fakeQueueClient
}

func newPresignRig(t *testing.T, presigner *fakePresigner) *presignRig {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := correlation.NewStore()
	queue := &fakeQueueClient{}
	sessions := &fakeSessionStore{sessions: map[string]authport.Session{
		"alice-token": {UserID: 2, Username: "alice"},
		"admin-token": {UserID: 1, Username: "admin", IsAdmin: true},
	}}

	ctl := NewPresignUploadController(store, presigner, uploadRepo{}, queue, zap.NewNop())

	r := gin.New()
	r.POST("/uploads", middleware.RequireSession(sessions), ctl.Handle())
	return &presignRig{router: r, store: store, queue: queue}
}

func postUpload(t *testing.T, rig *presignRig, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	rig.router.ServeHTTP(rec, req)
	return rec
}

func TestPresignDerivesUserConversation(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{})

	rec := postUpload(t, rig, "alice-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Key, "alice/7/"), "key %q must embed the uploader and conversation", resp.Key)
	assert.True(t, strings.HasSuffix(resp.Key, ".webm"))
	assert.Contains(t, resp.URL, resp.Key)

	assert.Equal(t, 1, rig.store.Pending())
	require.Len(t, rig.queue.tasks, 1)
	assert.Equal(t, "transcription:expire_job", rig.queue.tasks[0].Type)
	assert.Equal(t, defaultJobTTL, rig.queue.opts[0].ProcessIn)
}

func TestPresignUploadTTLConfigurable(t *testing.T) {
	presigner := &fakePresigner{}

	rig := newPresignRig(t, presigner)
	rec := postUpload(t, rig, "alice-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultUploadTTL, presigner.lastExpiry)

	t.Setenv("UPLOAD_URL_TTL", "90s")
	rig = newPresignRig(t, presigner)
	rec = postUpload(t, rig, "alice-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90*time.Second, presigner.lastExpiry)
}

func TestPresignAdminRequiresChatID(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{})

	rec := postUpload(t, rig, "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, rig.store.Pending())
}

func TestPresignAdminWithChatID(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{})

	rec := postUpload(t, rig, "admin-token", map[string]int64{"chat_id": 7})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Key, "admin/7/"))
}

func TestPresignAdminRejectedForForeignChat(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{})

	rec := postUpload(t, rig, "admin-token", map[string]int64{"chat_id": 99})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, rig.store.Pending())
}

func TestPresignRequiresSession(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{})

	rec := postUpload(t, rig, "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPresignFailureExpiresJob(t *testing.T) {
	rig := newPresignRig(t, &fakePresigner{fail: true})

	rec := postUpload(t, rig, "alice-token", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, rig.store.Pending(), "an unusable upload handle must not leave a pending job")
	assert.Empty(t, rig.queue.tasks)
}
