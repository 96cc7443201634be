package memory

import (
	"context"
	"sync"
	"time"

	"roomcast/internal/core/domain"
)

type membershipKey struct {
	roomID domain.RoomID
	userID domain.UserID
}

// MemoryChatRepository keeps rooms, memberships, and messages in maps.
type MemoryChatRepository struct {
	rooms       map[domain.RoomID]domain.Room
	memberships map[membershipKey]string
	messages    map[domain.RoomID][]domain.Message
	users       map[domain.UserID]domain.User
	mu          sync.RWMutex
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		rooms:       make(map[domain.RoomID]domain.Room),
		memberships: make(map[membershipKey]string),
		messages:    make(map[domain.RoomID][]domain.Message),
		users:       make(map[domain.UserID]domain.User),
	}
}

// PutUser registers a user so room listings can resolve members.
func (r *MemoryChatRepository) PutUser(user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
}

func (r *MemoryChatRepository) GetUsers(ctx context.Context, roomID domain.RoomID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []domain.User
	for key := range r.memberships {
		if key.roomID != roomID {
			continue
		}
		if user, exists := r.users[key.userID]; exists {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *MemoryChatRepository) GetMembership(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, exists := r.memberships[membershipKey{roomID: roomID, userID: userID}]
	if !exists {
		return "", domain.ErrRoomNotFound
	}
	return code, nil
}

func (r *MemoryChatRepository) CreateRoom(ctx context.Context, userID domain.UserID, name, code string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := domain.Room{
		ID:   domain.NewRoomID(),
		Name: name,
		Code: code,
	}
	r.rooms[room.ID] = room
	r.memberships[membershipKey{roomID: room.ID, userID: userID}] = code

	result := room
	return &result, nil
}

func (r *MemoryChatRepository) CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content domain.MessageContent) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message := domain.Message{
		ID:        domain.NewMessageID(),
		UserID:    userID,
		RoomID:    roomID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	r.messages[roomID] = append(r.messages[roomID], message)

	result := message
	return &result, nil
}

func (r *MemoryChatRepository) GetMessagesByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]domain.Message, len(r.messages[roomID]))
	copy(messages, r.messages[roomID])
	return messages, nil
}

func (r *MemoryChatRepository) GetUserRooms(ctx context.Context, userID domain.UserID) ([]domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []domain.Room
	for key := range r.memberships {
		if key.userID != userID {
			continue
		}
		if room, exists := r.rooms[key.roomID]; exists {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}
