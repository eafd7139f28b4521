package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn in the counselor transcript.
// Transcripts are append-only; messages are never edited.
type ChatMessage struct {
	ID        string    `json:"id" validate:"required"`
	Role      Role      `json:"role" validate:"oneof=user assistant"`
	Content   string    `json:"content" validate:"maxbytes"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// NewChatMessage creates a message with a fresh id.
func NewChatMessage(role Role, content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: at.UTC(),
	}
}

// Validate checks the role and content size.
func (m *ChatMessage) Validate() error {
	return validate.Struct(m)
}

// UserMessages returns only the user-authored turns of a transcript, in order.
func UserMessages(transcript []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(transcript))
	for _, m := range transcript {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}
