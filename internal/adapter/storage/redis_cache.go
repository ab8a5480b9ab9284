package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const availabilityKeyPrefix = "availability:"

// RedisCache mirrors current available-for-hold counts so the web frontend
// can read stock badges without touching the engine. Writes are best-effort;
// the in-process ledger stays authoritative.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) SetAvailability(ctx context.Context, ticketTypeID string, available int) error {
	return r.client.Set(ctx, availabilityKeyPrefix+ticketTypeID, available, 0).Err()
}

func (r *RedisCache) GetAvailability(ctx context.Context, ticketTypeID string) (int, bool, error) {
	val, err := r.client.Get(ctx, availabilityKeyPrefix+ticketTypeID).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}
