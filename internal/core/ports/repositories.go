package ports

import (
	"context"
	"time"

	"roomcast/internal/core/domain"

	"github.com/google/uuid"
)

// StoredCredential is the lookup result for a login attempt.
type StoredCredential struct {
	UserID       domain.UserID
	PasswordHash string
}

// CredentialsRepository is the narrow contract over the relational user
// store. Absent rows surface as domain sentinels, never as nil results.
type CredentialsRepository interface {
	// GetCredential returns domain.ErrUserNotFound when no user has the email.
	GetCredential(ctx context.Context, email string) (*StoredCredential, error)

	// GetUserByEmail returns domain.ErrUserNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Signup persists a new user. Returns domain.ErrDuplicateEmail when the
	// email is already registered.
	Signup(ctx context.Context, name, email, passwordHash, code string) (*domain.User, error)
}

// TokenRepository is the external key-value bookkeeping for issued refresh
// tokens, keyed by (user_id, token_id). The store itself must provide
// per-key atomicity for create/exist/delete.
type TokenRepository interface {
	Create(ctx context.Context, tokenID uuid.UUID, userID domain.UserID, ttl time.Duration) error

	// Exist returns the owning user id, or domain.ErrTokenNotFound when the
	// record was never created, expired, or was already consumed.
	Exist(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) (domain.UserID, error)

	Delete(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) error
}

// ChatRepository is the contract over room, membership, and message rows.
type ChatRepository interface {
	GetUsers(ctx context.Context, roomID domain.RoomID) ([]domain.User, error)

	// GetMembership returns the membership code, or domain.ErrRoomNotFound
	// when the user is not a member of the room.
	GetMembership(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error)

	// CreateRoom creates a room and the creator's membership atomically.
	CreateRoom(ctx context.Context, userID domain.UserID, name, code string) (*domain.Room, error)

	CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content domain.MessageContent) (*domain.Message, error)

	GetMessagesByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error)

	GetUserRooms(ctx context.Context, userID domain.UserID) ([]domain.Room, error)
}
