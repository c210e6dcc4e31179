package shouts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	latestKey = "launchpad:shouts:latest"
	latestTTL = 24 * time.Hour
)

// Cache keeps the most recent shout in Redis so the landing page can show
// it without touching Postgres.
type Cache struct {
	rdb *redis.Client
}

func NewCache(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) SetLatest(ctx context.Context, s *Shout) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, latestKey, payload, latestTTL).Err()
}

// Latest returns (nil, nil) when nothing is cached.
func (c *Cache) Latest(ctx context.Context) (*Shout, error) {
	raw, err := c.rdb.Get(ctx, latestKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s Shout
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
