package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", opts.Host, opts.Port)

	poolSize := opts.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// ErrCorrupted is returned when a cached value no longer decodes. The key is
// removed before returning.
var ErrCorrupted = errors.New("cache: corrupted entry")

// JSONStore stores JSON documents under a common key prefix with a fixed TTL.
type JSONStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewJSONStore(rdb *redis.Client, prefix string, ttl time.Duration) *JSONStore {
	return &JSONStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *JSONStore) Key(id string) string {
	return s.prefix + ":" + id
}

// Get decodes the entry into dest. A miss returns (false, nil).
func (s *JSONStore) Get(ctx context.Context, id string, dest any) (bool, error) {
	key := s.Key(id)

	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		s.rdb.Del(ctx, key)
		return false, ErrCorrupted
	}
	return true, nil
}

func (s *JSONStore) Set(ctx context.Context, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.Key(id), data, s.ttl).Err()
}

func (s *JSONStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.Key(id)
	}
	return s.rdb.Del(ctx, keys...).Err()
}
