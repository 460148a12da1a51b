package chat

// Participant captures membership in a conversation.
// Primary key: (ConversationID, UserID)
type Participant struct {
	ConversationID int64  `db:"conversation_id"`
	UserID         int64  `db:"user_id"`
	Username       string `db:"username"`
}
