// internal/gateway/redis_store.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "imi:ct"

// RedisStore keeps sealed blobs in Redis so handles survive gateway restarts
// and can be shared by several gateway workers.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr, password string, db int, prefix string) (*RedisStore, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(client, prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Put(ctx context.Context, handle Handle, blob []byte) error {
	if err := s.client.Set(ctx, s.key(handle), blob, 0).Err(); err != nil {
		return fmt.Errorf("storing ciphertext: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, handle Handle) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.key(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnknownHandle
		}
		return nil, fmt.Errorf("loading ciphertext: %w", err)
	}
	return blob, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(handle Handle) string {
	return s.prefix + ":" + string(handle)
}
