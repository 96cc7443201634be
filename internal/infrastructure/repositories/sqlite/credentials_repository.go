package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
)

// SqliteCredentialsRepository implements ports.CredentialsRepository over
// the users table.
type SqliteCredentialsRepository struct {
	store *Store
}

func NewSqliteCredentialsRepository(store *Store) *SqliteCredentialsRepository {
	return &SqliteCredentialsRepository{store: store}
}

func (r *SqliteCredentialsRepository) GetCredential(ctx context.Context, email string) (*ports.StoredCredential, error) {
	const query = `SELECT id, password FROM users WHERE email = ?`

	var rawID, passwordHash string
	err := r.store.sqlDB.QueryRowContext(ctx, query, email).Scan(&rawID, &passwordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}

	userID, err := domain.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", rawID, err)
	}

	return &ports.StoredCredential{UserID: userID, PasswordHash: passwordHash}, nil
}

func (r *SqliteCredentialsRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, name, email, code, created_at FROM users WHERE email = ?`

	var (
		rawID     string
		user      domain.User
		createdAt int64
	)
	err := r.store.sqlDB.QueryRowContext(ctx, query, email).
		Scan(&rawID, &user.Name, &user.Email, &user.Code, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}

	user.ID, err = domain.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", rawID, err)
	}
	user.CreatedAt = fromMillis(createdAt)

	return &user, nil
}

func (r *SqliteCredentialsRepository) Signup(ctx context.Context, name, email, passwordHash, code string) (*domain.User, error) {
	const query = `INSERT INTO users (id, name, email, password, code, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	user := domain.User{
		ID:        domain.NewUserID(),
		Name:      name,
		Email:     email,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.store.sqlDB.ExecContext(ctx, query,
		user.ID.String(), user.Name, user.Email, passwordHash, user.Code, toMillis(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}
