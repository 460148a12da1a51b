package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxMessageLen is the upper bound on message text, in runes.
const MaxMessageLen = 10000

// Message is an immutable log entry in a conversation. ID is assigned by the
// persistence layer from a strictly increasing sequence and doubles as the
// pagination cursor; it is never reused.
type Message struct {
	ID             int64     `db:"id"`
	ConversationID int64     `db:"conversation_id"`
	SenderID       int64     `db:"sender_id"`
	Sender         string    `db:"sender"` // display name, joined from users
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
	Deleted        bool      `db:"deleted"`
}

// ValidateText normalizes outbound message text and enforces length bounds.
// Returns the trimmed text or ErrInvalidText.
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrInvalidText
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLen {
		return "", ErrInvalidText
	}
	return trimmed, nil
}
