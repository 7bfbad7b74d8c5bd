package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	sidCookieName = "harara_sid"
	sidKey        = "sid"
	redisPrefix   = "harara:session:"
)

// RedisStore keeps session keys in a Redis hash; the browser only holds a
// signed cookie with the hash id.
type RedisStore struct {
	client  *redis.Client
	cookies *sessions.CookieStore
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, secret []byte, secure bool) *RedisStore {
	return &RedisStore{client: client, cookies: newGorillaStore(secret, nil, secure)}
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Open(w http.ResponseWriter, r *http.Request) Storage {
	return &redisStorage{store: s, w: w, r: r}
}

type redisStorage struct {
	store *RedisStore
	w     http.ResponseWriter
	r     *http.Request
}

func (s *redisStorage) cookie() *sessions.Session {
	sess, _ := s.store.cookies.Get(s.r, sidCookieName)
	return sess
}

func (s *redisStorage) id() string {
	id, _ := s.cookie().Values[sidKey].(string)
	return id
}

func (s *redisStorage) Get(ctx context.Context, key string) (string, error) {
	id := s.id()
	if id == "" {
		return "", nil
	}
	v, err := s.store.client.HGet(ctx, redisPrefix+id, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis session get: %w", err)
	}
	return v, nil
}

func (s *redisStorage) Set(ctx context.Context, values map[string]string, ttl time.Duration) error {
	sess := s.cookie()
	id, _ := sess.Values[sidKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[sidKey] = id
	}

	key := redisPrefix + id
	pipe := s.store.client.TxPipeline()
	fields := make([]any, 0, len(values)*2)
	for k, v := range values {
		fields = append(fields, k, v)
	}
	pipe.HSet(ctx, key, fields...)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}

	opts := *s.store.cookies.Options
	opts.MaxAge = int(ttl.Seconds())
	sess.Options = &opts
	return sess.Save(s.r, s.w)
}

func (s *redisStorage) Remove(ctx context.Context, keys ...string) error {
	sess := s.cookie()
	id, _ := sess.Values[sidKey].(string)
	if id == "" {
		return nil
	}
	key := redisPrefix + id
	if err := s.store.client.HDel(ctx, key, keys...).Err(); err != nil {
		return fmt.Errorf("redis session remove: %w", err)
	}
	n, err := s.store.client.HLen(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis session remove: %w", err)
	}
	if n > 0 {
		return nil
	}

	delete(sess.Values, sidKey)
	opts := *s.store.cookies.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(s.r, s.w)
}
