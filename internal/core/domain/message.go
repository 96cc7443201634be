package domain

import (
	"strings"
	"time"

	"roomcast/pkg/validation"
)

// MaxMessageContentGraphemes bounds a chat message, counted in grapheme
// clusters so combining sequences and emoji count as one unit.
const MaxMessageContentGraphemes = 255

// MessageContent is a validated chat message body.
type MessageContent string

// ParseMessageContent rejects empty, whitespace-only, and over-long content.
func ParseMessageContent(s string) (MessageContent, error) {
	if strings.TrimSpace(s) == "" {
		return "", NewValidationError("message content must not be empty")
	}
	if validation.GraphemeCount(s) > MaxMessageContentGraphemes {
		return "", NewValidationError("message content is too long")
	}
	return MessageContent(s), nil
}

func (c MessageContent) String() string { return string(c) }

// Message is a chat message as delivered to room subscribers.
type Message struct {
	ID        MessageID      `json:"id"`
	UserID    UserID         `json:"user_id"`
	RoomID    RoomID         `json:"room_id"`
	Content   MessageContent `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}
