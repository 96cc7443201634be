package ports

import (
	"context"

	"roomcast/internal/core/domain"
)

// ChatService exposes room and message operations with application error
// mapping applied on top of ChatRepository.
type ChatService interface {
	GetUsers(ctx context.Context, roomID domain.RoomID) ([]domain.User, error)
	GetMembership(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error)
	CreateRoom(ctx context.Context, userID domain.UserID, name, code string) (*domain.Room, error)
	CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content domain.MessageContent) (*domain.Message, error)
	GetMessagesByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error)
	GetUserRooms(ctx context.Context, userID domain.UserID) ([]domain.Room, error)
}
