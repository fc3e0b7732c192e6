package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every redis key this service writes (cooldowns,
// tallies, the scan queue), so one instance can share a redis with other
// deployments.
const KeyPrefix = "presensi:"

// Redis wraps the shared client used by the cooldown, the tallies, and the
// redis-backed queue.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis. The scan station round-trips redis on every
// decoded frame, so read/write timeouts stay well under the cooldown window:
// a slow redis must degrade to fail-open decisions, not stall scans.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     16,
		MinIdleConns: 2,
	})
	return &Redis{Client: client}
}

// Key returns a fully namespaced key.
func Key(suffix string) string {
	return KeyPrefix + suffix
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
