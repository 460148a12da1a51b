package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheadapter "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/cache/adapter"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
)

func newTestStore(t *testing.T) *CacheSessionStore {
	t.Helper()
	srv := miniredis.RunT(t)
	cache, err := cacheadapter.NewRedisAdapterURL("redis://" + srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return NewCacheSessionStore(cache)
}

func TestResolveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := port.Session{UserID: 2, Username: "alice", IsAdmin: false}
	require.NoError(t, store.Put(ctx, "tok-1", sess, time.Hour))

	got, err := store.Resolve(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestResolveUnknownToken(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, port.ErrInvalidSession)

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, port.ErrInvalidSession)
}

func TestDeleteInvalidatesSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok-2", port.Session{UserID: 1, Username: "admin", IsAdmin: true}, time.Hour))
	require.NoError(t, store.Delete(ctx, "tok-2"))

	_, err := store.Resolve(ctx, "tok-2")
	assert.ErrorIs(t, err, port.ErrInvalidSession)
}
