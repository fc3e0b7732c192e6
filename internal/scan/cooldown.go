// Package scan holds the debounce that keeps a QR code sitting in front of
// the camera from being processed once per decoded frame.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"presensi/internal/store"
)

// setter is the one redis call the cooldown needs, narrowed so tests can
// stand in for the client.
type setter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Cooldown suppresses repeat scans of the same student from the same device
// for a fixed window. It is a debounce, not a correctness mechanism; the
// attendance store's unique index handles real races.
type Cooldown struct {
	client setter
	window time.Duration
}

// NewCooldown creates a cooldown over redis. Window defaults to 2s.
func NewCooldown(client *redis.Client, window time.Duration) *Cooldown {
	return newCooldown(client, window)
}

func newCooldown(client setter, window time.Duration) *Cooldown {
	if window <= 0 {
		window = 2 * time.Second
	}
	return &Cooldown{client: client, window: window}
}

// Allow reports whether this (school, device, nisn) triple is outside its
// cooldown window, and opens a new window when it is. Redis being down fails
// open: a duplicate scan is a rejection downstream anyway.
func (c *Cooldown) Allow(ctx context.Context, schoolID, deviceID, nisn string) bool {
	key := store.Key(fmt.Sprintf("cooldown:%s:%s:%s", schoolID, deviceID, nisn))
	ok, err := c.client.SetNX(ctx, key, 1, c.window).Result()
	if err != nil {
		return true
	}
	return ok
}
