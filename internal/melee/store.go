package melee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hyeon-dev/regichess/internal/domain"
)

const defaultGameTTL = 24 * time.Hour

// Store owns the Redis layout of a game: one hash for the shared state,
// one list for the append-only move log, one hash for the roster. The
// state hash is only ever advanced through the commit script.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore builds the store. ttl bounds how long a live game survives
// untouched; non-positive selects the default.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultGameTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func gameKey(id string) string    { return "melee:game:" + strings.TrimSpace(id) }
func playersKey(id string) string { return gameKey(id) + ":players" }
func logKey(id string) string     { return gameKey(id) + ":log" }

func cooldownKey(id, user string) string {
	return "melee:cooldown:" + strings.TrimSpace(id) + ":" + strings.TrimSpace(user)
}

// EventsChannel names the Pub/Sub channel carrying a game's events.
func EventsChannel(id string) string { return "melee:events:" + strings.TrimSpace(id) }

// Commit script replies.
const (
	commitMissing  = -2 // game hash gone
	commitFinished = -1 // status no longer playing
	commitConflict = 0  // stored FEN differs from the read snapshot
)

// commitScript is the compare-and-swap: the write succeeds only if the
// stored FEN is still bit-identical to the snapshot the outcome was
// computed against and the game is still playing. State advance and log
// append happen in the same script, so the log order is exactly the
// commit order. Returns the new log length (the entry id) on success.
var commitScript = redis.NewScript(`
local fen = redis.call('HGET', KEYS[1], 'fen')
if not fen then return -2 end
if redis.call('HGET', KEYS[1], 'status') ~= 'playing' then return -1 end
if fen ~= ARGV[1] then return 0 end
redis.call('HSET', KEYS[1], 'fen', ARGV[2], 'status', ARGV[3], 'winner', ARGV[4], 'updated_at', ARGV[5])
local n = redis.call('RPUSH', KEYS[2], ARGV[6])
redis.call('EXPIRE', KEYS[1], ARGV[7])
redis.call('EXPIRE', KEYS[2], ARGV[7])
return n
`)

// startScript flips waiting to playing, never anything else. Forward-only
// by construction.
var startScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'status') == 'waiting' then
  redis.call('HSET', KEYS[1], 'status', 'playing', 'updated_at', ARGV[1])
  return 1
end
return 0
`)

func (s *Store) CreateGame(ctx context.Context, g *domain.GameState) error {
	key := gameKey(g.ID)
	err := s.rdb.HSet(ctx, key,
		"id", g.ID,
		"fen", g.FEN,
		"status", string(g.Status),
		"winner", string(g.Winner),
		"created_at", g.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", g.UpdatedAt.Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

func (s *Store) GetGame(ctx context.Context, id string) (*domain.GameState, error) {
	fields, err := s.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	g := &domain.GameState{
		ID:     fields["id"],
		FEN:    fields["fen"],
		Status: domain.GameStatus(fields["status"]),
		Winner: domain.Team(fields["winner"]),
	}
	if t, perr := time.Parse(time.RFC3339Nano, fields["created_at"]); perr == nil {
		g.CreatedAt = t
	}
	if t, perr := time.Parse(time.RFC3339Nano, fields["updated_at"]); perr == nil {
		g.UpdatedAt = t
	}
	return g, nil
}

// AddPlayer registers a roster entry. The hash field is the username, so
// uniqueness and team immutability come from HSETNX: a second write for
// the same name is a no-op and reports false.
func (s *Store) AddPlayer(ctx context.Context, id string, p *domain.Player) (bool, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return false, err
	}
	added, err := s.rdb.HSetNX(ctx, playersKey(id), p.Username, raw).Result()
	if err != nil {
		return false, err
	}
	_ = s.rdb.Expire(ctx, playersKey(id), s.ttl).Err()
	return added, nil
}

func (s *Store) GetPlayer(ctx context.Context, id, username string) (*domain.Player, error) {
	raw, err := s.rdb.HGet(ctx, playersKey(id), username).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Players(ctx context.Context, id string) ([]domain.Player, error) {
	fields, err := s.rdb.HGetAll(ctx, playersKey(id)).Result()
	if err != nil {
		return nil, err
	}
	players := make([]domain.Player, 0, len(fields))
	for _, raw := range fields {
		var p domain.Player
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// MoveLog returns the full log. The list index is the authoritative entry
// id; ids are assigned on read so the stored JSON never goes stale.
func (s *Store) MoveLog(ctx context.Context, id string) ([]domain.MoveLogEntry, error) {
	raws, err := s.rdb.LRange(ctx, logKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.MoveLogEntry, 0, len(raws))
	for i, raw := range raws {
		var e domain.MoveLogEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, err
		}
		e.ID = int64(i) + 1
		entries = append(entries, e)
	}
	return entries, nil
}

// MarkPlaying transitions waiting → playing. Safe to race: losers observe
// the already-playing state and the script does nothing.
func (s *Store) MarkPlaying(ctx context.Context, id string) (bool, error) {
	n, err := startScript.Run(ctx, s.rdb,
		[]string{gameKey(id)},
		time.Now().Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CommitMove runs the conditional write. expectedFEN is the snapshot the
// outcome was computed against; on success the entry id (new log length)
// is returned, otherwise one of the commit* codes.
func (s *Store) CommitMove(ctx context.Context, id, expectedFEN, newFEN string, winner domain.Team, entry *domain.MoveLogEntry) (int64, error) {
	status := domain.StatusPlaying
	if winner != "" {
		status = domain.StatusFinished
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return 0, err
	}
	n, err := commitScript.Run(ctx, s.rdb,
		[]string{gameKey(id), logKey(id)},
		expectedFEN,
		newFEN,
		string(status),
		string(winner),
		entry.Timestamp.Format(time.RFC3339Nano),
		raw,
		int(s.ttl/time.Second),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("commit script: %w", err)
	}
	return n, nil
}
