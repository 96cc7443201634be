package services

import (
	"context"
	"errors"
	"fmt"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
	apperrors "roomcast/pkg/errors"

	"go.uber.org/zap"
)

type chatService struct {
	chat   ports.ChatRepository
	logger *zap.SugaredLogger
}

func NewChatService(chat ports.ChatRepository, logger *zap.SugaredLogger) ports.ChatService {
	return &chatService{chat: chat, logger: logger}
}

func (s *chatService) GetUsers(ctx context.Context, roomID domain.RoomID) ([]domain.User, error) {
	users, err := s.chat.GetUsers(ctx, roomID)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}
	return users, nil
}

func (s *chatService) GetMembership(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error) {
	code, err := s.chat.GetMembership(ctx, roomID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("no membership for room %s", roomID))
		}
		return "", apperrors.NewUnexpectedError(err)
	}
	return code, nil
}

func (s *chatService) CreateRoom(ctx context.Context, userID domain.UserID, name, code string) (*domain.Room, error) {
	roomName, err := domain.ParseRoomName(name)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	room, err := s.chat.CreateRoom(ctx, userID, roomName, code)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}

	s.logger.Infow("room created", "room_id", room.ID, "user_id", userID)
	return room, nil
}

func (s *chatService) CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content domain.MessageContent) (*domain.Message, error) {
	message, err := s.chat.CreateMessage(ctx, userID, roomID, content)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}
	return message, nil
}

func (s *chatService) GetMessagesByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	messages, err := s.chat.GetMessagesByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}
	return messages, nil
}

func (s *chatService) GetUserRooms(ctx context.Context, userID domain.UserID) ([]domain.Room, error) {
	rooms, err := s.chat.GetUserRooms(ctx, userID)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(err)
	}
	return rooms, nil
}
