package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/auth/model"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshNotFound is returned for unknown, revoked or expired refresh tokens.
var ErrRefreshNotFound = errors.New("refresh token not found or expired")

// RefreshRepository stores refresh tokens in Redis. Only a hash of the token
// is used as the key.
type RefreshRepository struct {
	client *redis.Client
	prefix string
}

func NewRefreshRepository(redisURL string) (*RefreshRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRefreshRepositoryWithClient(client), nil
}

func NewRefreshRepositoryWithClient(client *redis.Client) *RefreshRepository {
	return &RefreshRepository{client: client, prefix: "refresh:"}
}

func (r *RefreshRepository) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return r.prefix + hex.EncodeToString(sum[:])
}

func (r *RefreshRepository) Save(ctx context.Context, token string, rec model.RefreshRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal refresh record: %w", err)
	}
	if err := r.client.Set(ctx, r.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (r *RefreshRepository) Lookup(ctx context.Context, token string) (model.RefreshRecord, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Result()
	if err == redis.Nil {
		return model.RefreshRecord{}, ErrRefreshNotFound
	}
	if err != nil {
		return model.RefreshRecord{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	var rec model.RefreshRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return model.RefreshRecord{}, fmt.Errorf("unmarshal refresh record: %w", err)
	}
	return rec, nil
}

func (r *RefreshRepository) Revoke(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *RefreshRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RefreshRepository) Close() error {
	return r.client.Close()
}
