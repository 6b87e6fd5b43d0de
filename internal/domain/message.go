package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is immutable once appended to a room's log.
type ChatMessage struct {
	ID        string    `json:"id"`
	From      SessionID `json:"from"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	RoomKey   RoomKey   `json:"roomKey"`
}

// NewChatMessage stamps the message with a fresh id and an ISO-8601 arrival
// time.
func NewChatMessage(room RoomKey, from SessionID, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		From:      from,
		Message:   text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RoomKey:   room,
	}
}
