package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// Store wraps a redis client with the small key/value and set surface
// the registry needs. It is constructed once at startup and injected;
// a nil return means redis is unreachable and the caller should fall
// back to the in-memory registry.
type Store struct {
	client *redis.Client
}

// Connect dials redis and verifies it is alive before handing the
// store out.
func Connect(ctx context.Context, addr string, db int) *Store {
	log := logging.New("redis")

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisDialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("redis is offline", "addr", addr, "error", err)
		return nil
	}

	log.Info("redis connected", "addr", addr, "db", db)
	return &Store{client: client}
}

// NewTestStore wires a store around an existing client. Test use only.
func NewTestStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) SetAdd(ctx context.Context, key string, members ...any) error {
	return s.client.SAdd(ctx, key, members...).Err()
}

func (s *Store) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.client.SMembers(ctx, key).Result()
}

// IsNil reports a key miss as opposed to an actual failure.
func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
