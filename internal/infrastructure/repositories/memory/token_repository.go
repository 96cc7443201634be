package memory

import (
	"context"
	"sync"
	"time"

	"roomcast/internal/core/domain"

	"github.com/google/uuid"
)

type tokenRecord struct {
	userID    domain.UserID
	expiresAt time.Time
}

// MemoryTokenRepository keeps refresh records in a map with lazy expiry.
type MemoryTokenRepository struct {
	records map[string]tokenRecord
	mu      sync.Mutex
	now     func() time.Time
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		records: make(map[string]tokenRecord),
		now:     time.Now,
	}
}

func tokenKey(tokenID uuid.UUID, userID domain.UserID) string {
	return userID.String() + ":" + tokenID.String()
}

func (r *MemoryTokenRepository) Create(ctx context.Context, tokenID uuid.UUID, userID domain.UserID, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[tokenKey(tokenID, userID)] = tokenRecord{
		userID:    userID,
		expiresAt: r.now().Add(ttl),
	}
	return nil
}

func (r *MemoryTokenRepository) Exist(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) (domain.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tokenKey(tokenID, userID)
	record, exists := r.records[key]
	if !exists {
		return domain.UserID{}, domain.ErrTokenNotFound
	}
	if r.now().After(record.expiresAt) {
		delete(r.records, key)
		return domain.UserID{}, domain.ErrTokenNotFound
	}
	return record.userID, nil
}

func (r *MemoryTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, tokenKey(tokenID, userID))
	return nil
}
