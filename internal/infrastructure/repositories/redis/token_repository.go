package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomcast/internal/core/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTokenRepository stores refresh-token records as plain string keys
// with a server-side TTL. Key layout: "<user_id>:<token_id>" -> user id.
// Redis expiry is the single source of truth for refresh-record lifetime.
type RedisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client}
}

func tokenKey(tokenID uuid.UUID, userID domain.UserID) string {
	return fmt.Sprintf("%s:%s", userID, tokenID)
}

func (r *RedisTokenRepository) Create(ctx context.Context, tokenID uuid.UUID, userID domain.UserID, ttl time.Duration) error {
	if err := r.client.Set(ctx, tokenKey(tokenID, userID), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store refresh record: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) Exist(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) (domain.UserID, error) {
	value, err := r.client.Get(ctx, tokenKey(tokenID, userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.UserID{}, domain.ErrTokenNotFound
		}
		return domain.UserID{}, fmt.Errorf("failed to look up refresh record: %w", err)
	}

	ownerID, err := domain.ParseUserID(value)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("corrupt refresh record %q: %w", value, err)
	}
	return ownerID, nil
}

func (r *RedisTokenRepository) Delete(ctx context.Context, tokenID uuid.UUID, userID domain.UserID) error {
	if err := r.client.Del(ctx, tokenKey(tokenID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete refresh record: %w", err)
	}
	return nil
}
