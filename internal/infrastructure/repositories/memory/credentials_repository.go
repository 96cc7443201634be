package memory

import (
	"context"
	"sync"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
)

type userRecord struct {
	user         domain.User
	passwordHash string
}

// MemoryCredentialsRepository keeps users in a mutex-guarded map. Used for
// tests and redis/sqlite-free local runs.
type MemoryCredentialsRepository struct {
	byEmail map[string]*userRecord
	mu      sync.RWMutex
}

func NewMemoryCredentialsRepository() *MemoryCredentialsRepository {
	return &MemoryCredentialsRepository{
		byEmail: make(map[string]*userRecord),
	}
}

func (r *MemoryCredentialsRepository) GetCredential(ctx context.Context, email string) (*ports.StoredCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.byEmail[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	return &ports.StoredCredential{
		UserID:       record.user.ID,
		PasswordHash: record.passwordHash,
	}, nil
}

func (r *MemoryCredentialsRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.byEmail[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	user := record.user
	return &user, nil
}

func (r *MemoryCredentialsRepository) Signup(ctx context.Context, name, email, passwordHash, code string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrDuplicateEmail
	}

	user := domain.User{
		ID:        domain.NewUserID(),
		Name:      name,
		Email:     email,
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
	r.byEmail[email] = &userRecord{user: user, passwordHash: passwordHash}

	result := user
	return &result, nil
}
