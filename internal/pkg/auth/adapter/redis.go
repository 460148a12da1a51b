package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/infrastructure/cache/port"
	"github.com/thomaselliottbetz/stt-chat-openai-whisper/internal/pkg/auth/port"
)

const sessionKeyPrefix = "session:"

// CacheSessionStore implements port.SessionStore on top of the cache port
// (Redis in production). Sessions are stored as JSON under "session:<token>".
type CacheSessionStore struct {
	cache cacheport.Cache
}

func NewCacheSessionStore(cache cacheport.Cache) *CacheSessionStore {
	return &CacheSessionStore{cache: cache}
}

// Ensure interface compliance at compile time
var _ port.SessionStore = (*CacheSessionStore)(nil)

func (s *CacheSessionStore) Resolve(ctx context.Context, token string) (port.Session, error) {
	if token == "" {
		return port.Session{}, port.ErrInvalidSession
	}
	raw, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if errors.Is(err, cacheport.ErrMiss) {
		return port.Session{}, port.ErrInvalidSession
	}
	if err != nil {
		return port.Session{}, fmt.Errorf("session: resolve: %w", err)
	}
	var sess port.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return port.Session{}, fmt.Errorf("session: decode: %w", err)
	}
	return sess, nil
}

func (s *CacheSessionStore) Put(ctx context.Context, token string, sess port.Session, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	return s.cache.Set(ctx, sessionKeyPrefix+token, string(raw), ttl)
}

func (s *CacheSessionStore) Delete(ctx context.Context, token string) error {
	_, err := s.cache.Del(ctx, sessionKeyPrefix+token)
	return err
}
