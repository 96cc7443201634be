package domain

import (
	"github.com/google/uuid"
)

// UserID identifies a registered user.
type UserID uuid.UUID

func NewUserID() UserID { return UserID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, NewValidationError("invalid user id")
	}
	return UserID(id), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// RoomID identifies a chat room. Parsed from its canonical string form.
type RoomID uuid.UUID

func NewRoomID() RoomID { return RoomID(uuid.New()) }

func ParseRoomID(s string) (RoomID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RoomID{}, NewValidationError("invalid room id")
	}
	return RoomID(id), nil
}

func (id RoomID) String() string { return uuid.UUID(id).String() }

func (id RoomID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *RoomID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// MessageID identifies a single chat message.
type MessageID uuid.UUID

func NewMessageID() MessageID { return MessageID(uuid.New()) }

func ParseMessageID(s string) (MessageID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MessageID{}, NewValidationError("invalid message id")
	}
	return MessageID(id), nil
}

func (id MessageID) String() string { return uuid.UUID(id).String() }

func (id MessageID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *MessageID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
