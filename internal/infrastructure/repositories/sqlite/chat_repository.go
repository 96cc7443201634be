package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomcast/internal/core/domain"
)

// SqliteChatRepository implements ports.ChatRepository over the rooms,
// rooms_users, and messages tables.
type SqliteChatRepository struct {
	store *Store
}

func NewSqliteChatRepository(store *Store) *SqliteChatRepository {
	return &SqliteChatRepository{store: store}
}

func (r *SqliteChatRepository) GetUsers(ctx context.Context, roomID domain.RoomID) ([]domain.User, error) {
	const query = `
SELECT u.id, u.name, u.email, u.code, u.created_at
FROM users u
JOIN rooms_users ru ON ru.user_id = u.id
WHERE ru.room_id = ?`

	rows, err := r.store.sqlDB.QueryContext(ctx, query, roomID.String())
	if err != nil {
		return nil, fmt.Errorf("query room users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			rawID     string
			user      domain.User
			createdAt int64
		)
		if err := rows.Scan(&rawID, &user.Name, &user.Email, &user.Code, &createdAt); err != nil {
			return nil, fmt.Errorf("scan room user: %w", err)
		}
		user.ID, err = domain.ParseUserID(rawID)
		if err != nil {
			return nil, fmt.Errorf("corrupt user id %q: %w", rawID, err)
		}
		user.CreatedAt = fromMillis(createdAt)
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *SqliteChatRepository) GetMembership(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (string, error) {
	const query = `SELECT code FROM rooms_users WHERE room_id = ? AND user_id = ?`

	var code string
	err := r.store.sqlDB.QueryRowContext(ctx, query, roomID.String(), userID.String()).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRoomNotFound
		}
		return "", fmt.Errorf("query membership: %w", err)
	}
	return code, nil
}

// CreateRoom inserts the room and the creator's membership in one
// transaction.
func (r *SqliteChatRepository) CreateRoom(ctx context.Context, userID domain.UserID, name, code string) (*domain.Room, error) {
	room := domain.Room{
		ID:   domain.NewRoomID(),
		Name: name,
		Code: code,
	}

	tx, err := r.store.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create room: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (id, name, code) VALUES (?, ?, ?)`,
		room.ID.String(), room.Name, room.Code); err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rooms_users (room_id, user_id, code) VALUES (?, ?, ?)`,
		room.ID.String(), userID.String(), room.Code); err != nil {
		return nil, fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create room: %w", err)
	}
	return &room, nil
}

func (r *SqliteChatRepository) CreateMessage(ctx context.Context, userID domain.UserID, roomID domain.RoomID, content domain.MessageContent) (*domain.Message, error) {
	const query = `INSERT INTO messages (id, user_id, room_id, content, created_at) VALUES (?, ?, ?, ?, ?)`

	message := domain.Message{
		ID:        domain.NewMessageID(),
		UserID:    userID,
		RoomID:    roomID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.store.sqlDB.ExecContext(ctx, query,
		message.ID.String(), userID.String(), roomID.String(), string(content), toMillis(message.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &message, nil
}

func (r *SqliteChatRepository) GetMessagesByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error) {
	const query = `
SELECT id, user_id, room_id, content, created_at
FROM messages
WHERE room_id = ?
ORDER BY created_at ASC, id ASC`

	rows, err := r.store.sqlDB.QueryContext(ctx, query, roomID.String())
	if err != nil {
		return nil, fmt.Errorf("query room messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			rawID, rawUserID, rawRoomID, content string
			createdAt                            int64
		)
		if err := rows.Scan(&rawID, &rawUserID, &rawRoomID, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		message := domain.Message{
			Content:   domain.MessageContent(content),
			CreatedAt: fromMillis(createdAt),
		}
		if message.ID, err = domain.ParseMessageID(rawID); err != nil {
			return nil, fmt.Errorf("corrupt message id %q: %w", rawID, err)
		}
		if message.UserID, err = domain.ParseUserID(rawUserID); err != nil {
			return nil, fmt.Errorf("corrupt user id %q: %w", rawUserID, err)
		}
		if message.RoomID, err = domain.ParseRoomID(rawRoomID); err != nil {
			return nil, fmt.Errorf("corrupt room id %q: %w", rawRoomID, err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *SqliteChatRepository) GetUserRooms(ctx context.Context, userID domain.UserID) ([]domain.Room, error) {
	const query = `
SELECT r.id, r.name, r.code
FROM rooms r
JOIN rooms_users ru ON ru.room_id = r.id
WHERE ru.user_id = ?`

	rows, err := r.store.sqlDB.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query user rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		var (
			rawID string
			room  domain.Room
		)
		if err := rows.Scan(&rawID, &room.Name, &room.Code); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		if room.ID, err = domain.ParseRoomID(rawID); err != nil {
			return nil, fmt.Errorf("corrupt room id %q: %w", rawID, err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}
