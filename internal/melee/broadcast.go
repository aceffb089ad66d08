package melee

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// Event is the structured payload published to a game's audience. Text
// is the rendered catalog announcement, present when a message catalog
// is attached.
type Event struct {
	Type   string               `json:"type"` // "start", "move" or "finish"
	GameID string               `json:"game_id"`
	FEN    string               `json:"fen,omitempty"`
	Winner domain.Team          `json:"winner,omitempty"`
	Entry  *domain.MoveLogEntry `json:"entry,omitempty"`
	Text   string               `json:"text,omitempty"`
}

// Publisher fans an event out to a per-game audience. The transport that
// delivers events to clients subscribes on EventsChannel(gameID).
type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher broadcasts events over Redis Pub/Sub.
func NewRedisPublisher(rdb *redis.Client) Publisher {
	return &redisPublisher{rdb: rdb}
}

func (p *redisPublisher) Publish(ctx context.Context, ev *Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, EventsChannel(ev.GameID), raw).Err()
}
