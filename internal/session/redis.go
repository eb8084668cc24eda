package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a native TTL so expired records
// disappear on their own.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(sid string) string { return s.prefix + ":" + sid }

func (s *RedisStore) Save(ctx context.Context, sid string, userID uint64, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(sid), strconv.FormatUint(userID, 10), ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, sid string) (uint64, error) {
	v, err := s.rdb.Get(ctx, s.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return id, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, s.key(sid)).Err()
}
