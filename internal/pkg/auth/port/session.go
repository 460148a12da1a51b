package port

import (
	"context"
	"errors"
	"time"
)

// Session is the identity resolved from an opaque token: who the caller is
// and whether they are the single distinguished admin.
type Session struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// ErrInvalidSession signals an unknown or expired token in a typed way.
var ErrInvalidSession = errors.New("session: invalid or expired token")

// SessionStore maps opaque session tokens to identities. Token issuance and
// credential checks belong to the external login service; this side only
// resolves (and, for that service and for tests, writes) sessions.
type SessionStore interface {
	// Resolve returns the session for token, or ErrInvalidSession.
	Resolve(ctx context.Context, token string) (Session, error)

	// Put stores a session under token with the given TTL.
	Put(ctx context.Context, token string, s Session, ttl time.Duration) error

	// Delete removes a session (logout).
	Delete(ctx context.Context, token string) error
}
