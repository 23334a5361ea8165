package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const classificationPrefix = "affect:cls:"

// Store wraps the redis client with the small set of operations the service
// needs. Callers treat every operation as best-effort.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// GetClassification returns the cached classifier payload for a text hash.
// redis.Nil is returned on a miss.
func (s *Store) GetClassification(ctx context.Context, textHash string) (string, error) {
	return s.rdb.Get(ctx, classificationPrefix+textHash).Result()
}

func (s *Store) SetClassification(ctx context.Context, textHash, payload string, ttl time.Duration) error {
	return s.rdb.Set(ctx, classificationPrefix+textHash, payload, ttl).Err()
}
