package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wenyfour/rideshare/config"
	"github.com/wenyfour/rideshare/internal/domain"
)

type RedisCache struct {
	client   *redis.Client
	ridesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ridesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ridesTTL: ridesTTL,
	}
}

// GetOpenRides returns the cached open-ride listing, or nil on a miss.
func (c *RedisCache) GetOpenRides(ctx context.Context) ([]domain.Ride, error) {
	data, err := c.client.Get(ctx, openRidesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rides []domain.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

func (c *RedisCache) SetOpenRides(ctx context.Context, rides []domain.Ride) error {
	payload, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, openRidesKey(), payload, c.ridesTTL).Err()
}

func (c *RedisCache) InvalidateOpenRides(ctx context.Context) error {
	return c.client.Del(ctx, openRidesKey()).Err()
}

// AcquireRideLock takes a short-lived lock on a ride while a booking
// is in flight. It keeps concurrent bookings on the same ride from
// piling up on the database conflict path; correctness does not
// depend on it.
func (c *RedisCache) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, rideLockKey(rideID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseRideLock(ctx context.Context, rideID string) error {
	return c.client.Del(ctx, rideLockKey(rideID)).Err()
}

func openRidesKey() string {
	return "cache:rides:open"
}

func rideLockKey(rideID string) string {
	return fmt.Sprintf("lock:ride:%s", rideID)
}
