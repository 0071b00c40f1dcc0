package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openpic/openpic/internal/config"
)

// Marker values stored under ledger keys. Readers never branch on them, but
// they make the keyspace inspectable during an incident.
const (
	markerReserved  = "reserved"
	markerConfirmed = "confirmed"
)

// RedisGate is a Gate backed by a Redis keyspace. Reservation atomicity
// comes from SET NX EX, which Redis executes as a single command, so the
// guarantee holds across any number of coordinator processes.
type RedisGate struct {
	rdb          redis.Cmdable
	keyPrefix    string
	reservedTTL  time.Duration
	confirmedTTL time.Duration // 0 disables expiry of confirmed entries
}

// NewRedisGate creates a gate using the given Redis client and ledger tuning.
func NewRedisGate(rdb redis.Cmdable, cfg config.LedgerConfig) *RedisGate {
	return &RedisGate{
		rdb:          rdb,
		keyPrefix:    cfg.KeyPrefix,
		reservedTTL:  cfg.ReservedTTL,
		confirmedTTL: cfg.ConfirmedTTL,
	}
}

func (g *RedisGate) key(fp string) string {
	return g.keyPrefix + fp
}

// Reserve implements Gate.
func (g *RedisGate) Reserve(ctx context.Context, fp string) (Outcome, error) {
	ok, err := g.rdb.SetNX(ctx, g.key(fp), markerReserved, g.reservedTTL).Result()
	if err != nil {
		return AlreadyKnown, fmt.Errorf("ledger reserve %s: %w", fp, err)
	}
	if ok {
		return Reserved, nil
	}
	return AlreadyKnown, nil
}

// Confirm implements Gate. The entry is overwritten regardless of its current
// state, so confirming an expired or already-confirmed fingerprint succeeds.
func (g *RedisGate) Confirm(ctx context.Context, fp string) error {
	if err := g.rdb.Set(ctx, g.key(fp), markerConfirmed, g.confirmedTTL).Err(); err != nil {
		return fmt.Errorf("ledger confirm %s: %w", fp, err)
	}
	return nil
}

// Exists implements Gate.
func (g *RedisGate) Exists(ctx context.Context, fp string) (bool, error) {
	n, err := g.rdb.Exists(ctx, g.key(fp)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists %s: %w", fp, err)
	}
	return n > 0, nil
}
