// Package tally keeps cheap per-school daily counters in Redis so dashboards
// don't aggregate over the attendance table on every poll.
package tally

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"presensi/internal/store"
)

// Counter fields.
const (
	FieldPresent    = "present"
	FieldLate       = "late"
	FieldCheckedOut = "checked_out"
)

const retention = 48 * time.Hour

// Tally wraps the Redis hash per (school, day).
type Tally struct {
	client *redis.Client
}

// New creates a tally over redis.
func New(client *redis.Client) *Tally {
	return &Tally{client: client}
}

func key(schoolID, day string) string {
	return store.Key(fmt.Sprintf("tally:%s:%s", schoolID, day))
}

// Bump increments one field for the school's day. Counters expire after two
// days; the attendance table stays the source of truth.
func (t *Tally) Bump(ctx context.Context, schoolID, day, field string) error {
	k := key(schoolID, day)
	if err := t.client.HIncrBy(ctx, k, field, 1).Err(); err != nil {
		return err
	}
	return t.client.Expire(ctx, k, retention).Err()
}

// Day returns the school's counters for a day. Missing fields read as zero.
func (t *Tally) Day(ctx context.Context, schoolID, day string) (map[string]int64, error) {
	raw, err := t.client.HGetAll(ctx, key(schoolID, day)).Result()
	if err != nil {
		return nil, err
	}
	out := map[string]int64{FieldPresent: 0, FieldLate: 0, FieldCheckedOut: 0}
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
