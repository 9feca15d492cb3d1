package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dealflow:session:"

// RedisStore keeps sessions in Redis; keys expire with the session.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

type redisSession struct {
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}
	b, err := json.Marshal(redisSession{
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
		LastSeen:  sess.LastSeen,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+sess.ID, b, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (Session, error) {
	b, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var rs redisSession
	if err := json.Unmarshal(b, &rs); err != nil {
		return Session{}, err
	}
	return Session{
		ID:        id,
		UserID:    rs.UserID,
		CreatedAt: rs.CreatedAt,
		LastSeen:  rs.LastSeen,
		ExpiresAt: rs.ExpiresAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}
