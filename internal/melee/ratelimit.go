package melee

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCooldownWindow bounds how often a single player may submit in a
// single game. Distinct players racing is the point of the variant; one
// player flooding is not.
const DefaultCooldownWindow = time.Second

// Cooldown is the per-(game, player) rate limiter. It is a short-lived
// SETNX marker, fully independent of the board CAS: a cooldown rejection
// never reads or contends on shared game state.
type Cooldown struct {
	rdb    *redis.Client
	window time.Duration
}

// NewCooldown builds the limiter. window == 0 selects the default; a
// negative window disables limiting entirely (used by tests).
func NewCooldown(rdb *redis.Client, window time.Duration) *Cooldown {
	if window == 0 {
		window = DefaultCooldownWindow
	}
	return &Cooldown{rdb: rdb, window: window}
}

// Admit marks the player's attempt and reports whether it may proceed.
// The marker is set on every admitted attempt, accepted or not.
func (c *Cooldown) Admit(ctx context.Context, gameID, username string) (bool, error) {
	if c.window < 0 {
		return true, nil
	}
	return c.rdb.SetNX(ctx, cooldownKey(gameID, username), "1", c.window).Result()
}
