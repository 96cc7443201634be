package domain

import "roomcast/pkg/validation"

// Room is a named chat room.
type Room struct {
	ID   RoomID `json:"room_id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ParseRoomName validates a room name (non-empty, max 255 graphemes, no
// markup characters).
func ParseRoomName(name string) (string, error) {
	if err := validation.ValidateName(name, maxNameGraphemes); err != nil {
		return "", NewValidationError(err.Error())
	}
	return name, nil
}
