package realtime

import (
	"encoding/json"
	"time"
)

// Event types carried on the per-connection channel. Every event pushed to
// the admin carries a conversation id so a single socket can multiplex many
// conversations; the client demultiplexes on that id.
const (
	EventTypeMessage       = "message"
	EventTypeTranscription = "transcription"
	EventTypePing          = "ping"
	EventTypeConnected     = "connected"
	EventTypeError         = "error"
)

// MessageEvent announces a persisted chat message to a live participant.
type MessageEvent struct {
	Type           string    `json:"type"`
	ConversationID int64     `json:"conversation_id"`
	ID             int64     `json:"id"`
	Sender         string    `json:"sender"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

// TranscriptionEvent delivers a speech-to-text result to the user who
// recorded it. It is never persisted and never sent to the other participant;
// the text lands in the sender's composer for them to edit and send.
type TranscriptionEvent struct {
	Type           string `json:"type"`
	ConversationID int64  `json:"conversation_id"`
	Text           string `json:"text"`
}

// PingEvent keeps idle sockets warm. Clients are not required to reply;
// liveness is tracked via the read deadline.
type PingEvent struct {
	Type string `json:"type"`
}

// ErrorEvent reports a rejected inbound frame back to its sender.
type ErrorEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

func NewMessageEvent(conversationID, id int64, sender, text string, ts time.Time) MessageEvent {
	return MessageEvent{
		Type:           EventTypeMessage,
		ConversationID: conversationID,
		ID:             id,
		Sender:         sender,
		Text:           text,
		Timestamp:      ts,
	}
}

func NewTranscriptionEvent(conversationID int64, text string) TranscriptionEvent {
	return TranscriptionEvent{
		Type:           EventTypeTranscription,
		ConversationID: conversationID,
		Text:           text,
	}
}

// Encode marshals an event for the wire. Events are plain structs with
// stable JSON tags, so a marshal failure indicates a programming error.
func Encode(event any) ([]byte, error) {
	return json.Marshal(event)
}
