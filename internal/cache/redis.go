package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvalenz/roomreserve/config"
	"github.com/dvalenz/roomreserve/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	roomsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, roomsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		roomsTTL: roomsTTL,
	}
}

func (c *RedisCache) GetRooms(ctx context.Context) ([]domain.Room, error) {
	data, err := c.client.Get(ctx, roomsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rooms []domain.Room
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *RedisCache) SetRooms(ctx context.Context, rooms []domain.Room) error {
	payload, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, roomsKey(), payload, c.roomsTTL).Err()
}

// AcquireSlotLock takes a short-lived hold on one hourly slot while a booking
// is validated and persisted. It narrows the check-then-insert race; the
// ledger's overlap guard remains the final authority.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, roomID int64, date string, hour int, ttl time.Duration) (bool, error) {
	key := slotLockKey(roomID, date, hour)
	return c.client.SetNX(ctx, key, "held", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, roomID int64, date string, hour int) error {
	return c.client.Del(ctx, slotLockKey(roomID, date, hour)).Err()
}

func roomsKey() string {
	return "cache:rooms"
}

func slotLockKey(roomID int64, date string, hour int) string {
	return fmt.Sprintf("lock:room:%d:%s:%d", roomID, date, hour)
}
