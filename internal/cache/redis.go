package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeni-t/flightbooking/config"
	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	offersTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, offersTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		offersTTL: offersTTL,
	}
}

func (c *RedisCache) GetOffers(ctx context.Context, origin, destination, date string) ([]domain.FlightOffer, error) {
	data, err := c.client.Get(ctx, offersKey(origin, destination, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var offers []domain.FlightOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *RedisCache) SetOffers(ctx context.Context, origin, destination, date string, offers []domain.FlightOffer) error {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, offersKey(origin, destination, date), payload, c.offersTTL).Err()
}

// AcquireBookingLock guards against duplicate booking submissions for the same
// passenger and flight while the first one is still pending.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, flightNumber, date, email string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, bookingLockKey(flightNumber, date, email), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, flightNumber, date, email string) error {
	return c.client.Del(ctx, bookingLockKey(flightNumber, date, email)).Err()
}

func offersKey(origin, destination, date string) string {
	return fmt.Sprintf("cache:offers:%s:%s:%s", origin, destination, date)
}

func bookingLockKey(flightNumber, date, email string) string {
	return fmt.Sprintf("lock:booking:%s:%s:%s", flightNumber, date, email)
}
