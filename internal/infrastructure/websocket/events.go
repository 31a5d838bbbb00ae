package websocket

import (
	"encoding/json"
	"time"
)

// Client to server event types.
const (
	EventJoin     = "join"
	EventLeave    = "leave"
	EventTyping   = "typing"
	EventSend     = "send"
	EventMarkRead = "mark_read"
	EventPing     = "ping"
)

// Server to client event types.
const (
	EventConnected    = "connected"
	EventNewMessage   = "new_message"
	EventMessagesRead = "messages_read"
	EventUserJoined   = "user_joined"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is the wire envelope for both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	ChatID string `json:"chat_id"`
}

type TypingPayload struct {
	ChatID   string `json:"chat_id"`
	IsTyping bool   `json:"is_typing"`
}

type SendPayload struct {
	ChatID      string   `json:"chat_id"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments,omitempty"`
}

type MarkReadPayload struct {
	ChatID string `json:"chat_id"`
}

type TypingBroadcast struct {
	ChatID    string    `json:"chat_id"`
	UserID    string    `json:"user_id"`
	IsTyping  bool      `json:"is_typing"`
	ExpiresAt time.Time `json:"expires_at"`
}

type MessagesReadBroadcast struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

type UserJoinedBroadcast struct {
	ChatID string `json:"chat_id"`
	UserID string `json:"user_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode marshals an outbound event. Marshal failures are programming
// errors on our own payload types, so the error collapses to nil bytes.
func Encode(eventType string, payload interface{}) []byte {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil
		}
		raw = data
	}

	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil
	}
	return data
}
