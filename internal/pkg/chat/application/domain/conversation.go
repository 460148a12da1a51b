package chat

import "time"

// Conversation represents a 1:1 thread between the admin and one user.
// Membership is immutable once created; the data model reserves room for
// groups but every behavior here assumes exactly two participants.
type Conversation struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

// Summary is one row of a user's conversation list: the other participant,
// a last-message preview, and whether anything is unread.
type Summary struct {
	ConversationID int64      `json:"chat_id"`
	OtherUsername  string     `json:"username"`
	LastMessage    *string    `json:"last_message"`
	LastMessageAt  *time.Time `json:"timestamp"`
	Unread         bool       `json:"unread"`
}
