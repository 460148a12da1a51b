package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrNotParticipant = errors.New("chat: sender is not a participant in the conversation")
	ErrInvalidText    = errors.New("chat: message text must be between 1 and 10000 characters")
	ErrNotFound       = errors.New("chat: conversation not found")
)
