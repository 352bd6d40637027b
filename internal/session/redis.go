package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/roster/internal/auth"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "roster:session:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisStore keeps one key per session that expires together with the token.
// Revoking deletes the key.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

type redisSession struct {
	UserID    int64     `json:"userId"`
	TokenHash string    `json:"tokenHash"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *RedisStore) Save(ctx context.Context, sess auth.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	raw, err := json.Marshal(redisSession{
		UserID:    sess.UserID,
		TokenHash: sess.TokenHash,
		ExpiresAt: sess.ExpiresAt,
		CreatedAt: sess.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	return s.rdb.Set(ctx, keyPrefix+sess.ID, raw, ttl).Err()
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (auth.Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}

	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		return auth.Session{}, fmt.Errorf("decode session: %w", err)
	}

	return auth.Session{
		ID:        id,
		UserID:    rs.UserID,
		TokenHash: rs.TokenHash,
		ExpiresAt: rs.ExpiresAt,
		CreatedAt: rs.CreatedAt,
	}, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// Ping checks redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
