package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "sceptre:session"

// RedisStore keeps the session under one well-known redis key, for setups
// where several workstations share an authenticated session. Last write
// wins; there is no reconciliation between concurrent clients.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return &RedisStore{rdb: redis.NewClient(opt)}, nil
}

func (s *RedisStore) Bootstrap() (Session, bool, error) {
	ctx := context.Background()
	b, err := s.rdb.Get(ctx, redisSessionKey).Bytes()
	if err == redis.Nil {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("read session key: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil || !sess.Valid() || tokenExpired(sess.Token) {
		s.rdb.Del(ctx, redisSessionKey)
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *RedisStore) Save(sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to save partial session")
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.rdb.Set(context.Background(), redisSessionKey, b, 0).Err()
}

func (s *RedisStore) Clear() error {
	return s.rdb.Del(context.Background(), redisSessionKey).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
