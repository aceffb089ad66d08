package melee

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hyeon-dev/regichess/internal/domain"
	"github.com/hyeon-dev/regichess/internal/obslog"
	"github.com/hyeon-dev/regichess/internal/referee"
	"github.com/hyeon-dev/regichess/internal/replay"
)

// Manager drives the melee game loop. Request handlers are stateless; all
// coordination between concurrent submitters goes through the store's
// compare-and-swap, never through in-process locks.
type Manager struct {
	rdb      *redis.Client
	store    *Store
	cooldown *Cooldown
	pub      Publisher
	repo     *Repository
	msgs     *Messages
	replays  *replay.Builder
	retries  int
}

func NewManager(redisURL string, opts Options) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for melee manager")
	}
	ropts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(ropts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	retries := opts.CommitRetries
	if retries <= 0 {
		retries = DefaultCommitRetries
	}
	return &Manager{
		rdb:      rdb,
		store:    NewStore(rdb, opts.GameTTL),
		cooldown: NewCooldown(rdb, opts.CooldownWindow),
		retries:  retries,
	}, nil
}

// Redis exposes the underlying client for collaborators that share the
// connection, like the pub/sub publisher.
func (m *Manager) Redis() *redis.Client { return m.rdb }

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires a database repository for archiving finished games.
func (m *Manager) AttachRepository(r *Repository) {
	if m != nil {
		m.repo = r
	}
}

// AttachPublisher wires the broadcast capability.
func (m *Manager) AttachPublisher(p Publisher) {
	if m != nil {
		m.pub = p
	}
}

// AttachMessages wires the catalog that renders event and rejection text.
func (m *Manager) AttachMessages(ms *Messages) {
	if m != nil {
		m.msgs = ms
	}
}

// AttachReplay wires the playback builder behind the Replay operation.
func (m *Manager) AttachReplay(b *replay.Builder) {
	if m != nil {
		m.replays = b
	}
}

// RejectText renders the user-facing explanation for a failed
// submission. Falls back to the plain error without a catalog.
func (m *Manager) RejectText(err error, gameID, move string, winner domain.Team) string {
	if m.msgs == nil {
		return err.Error()
	}
	return m.msgs.Reject(err, gameID, move, winner)
}

// CreateGame opens a fresh game in the waiting state.
func (m *Manager) CreateGame(ctx context.Context) (*domain.GameState, error) {
	now := time.Now()
	g := &domain.GameState{
		ID:        "melee-" + uuid.NewString(),
		FEN:       referee.StartingFEN,
		Status:    domain.StatusWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateGame(ctx, g); err != nil {
		return nil, err
	}
	obslog.L().Info("melee_game_create", zap.String("game_id", g.ID))
	return g, nil
}

// JoinGame adds a player to a side. Usernames are unique per game and the
// team is immutable after the first join; re-joining with the same team
// is an idempotent no-op. The game flips waiting → playing once both
// teams have at least one player.
func (m *Manager) JoinGame(ctx context.Context, gameID, username string, team domain.Team) (*domain.Player, error) {
	username = strings.TrimSpace(username)
	if gameID == "" || username == "" || (team != domain.TeamWhite && team != domain.TeamBlack) {
		return nil, ErrBadInput
	}
	g, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	if g.Status == domain.StatusFinished {
		return nil, ErrAlreadyFinished
	}
	p := &domain.Player{Username: username, Team: team, JoinedAt: time.Now()}
	added, err := m.store.AddPlayer(ctx, gameID, p)
	if err != nil {
		return nil, err
	}
	if !added {
		existing, err := m.store.GetPlayer(ctx, gameID, username)
		if err != nil {
			return nil, err
		}
		if existing == nil || existing.Team != team {
			return nil, fmt.Errorf("%w: username taken on the other team", ErrBadInput)
		}
		return existing, nil
	}
	started, err := m.maybeStart(ctx, gameID)
	if err != nil {
		obslog.L().Error("melee_start_error",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
	} else if started {
		m.publish(ctx, &Event{Type: "start", GameID: gameID, FEN: g.FEN, Text: m.msgs.Started()})
	}
	obslog.L().Info("melee_join",
		zap.String("game_id", gameID),
		zap.String("username", username),
		zap.String("team", string(team)),
	)
	return p, nil
}

func (m *Manager) maybeStart(ctx context.Context, gameID string) (bool, error) {
	players, err := m.store.Players(ctx, gameID)
	if err != nil {
		return false, err
	}
	var white, black bool
	for _, p := range players {
		switch p.Team {
		case domain.TeamWhite:
			white = true
		case domain.TeamBlack:
			black = true
		}
	}
	if !white || !black {
		return false, nil
	}
	return m.store.MarkPlaying(ctx, gameID)
}

// GetGame returns the current snapshot, nil when unknown.
func (m *Manager) GetGame(ctx context.Context, gameID string) (*domain.GameState, error) {
	return m.store.GetGame(ctx, gameID)
}

// MoveLog returns the committed move log in commit order.
func (m *Manager) MoveLog(ctx context.Context, gameID string) ([]domain.MoveLogEntry, error) {
	return m.store.MoveLog(ctx, gameID)
}

// Players returns the roster.
func (m *Manager) Players(ctx context.Context, gameID string) ([]domain.Player, error) {
	return m.store.Players(ctx, gameID)
}

// Replay schedules the committed log for playback.
func (m *Manager) Replay(ctx context.Context, gameID string) ([]replay.Frame, error) {
	g, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrNotFound
	}
	log, err := m.store.MoveLog(ctx, gameID)
	if err != nil {
		return nil, err
	}
	b := m.replays
	if b == nil {
		b = replay.NewBuilder()
	}
	return b.Build(log), nil
}

// Submit resolves raw move text for a player and commits exactly one
// outcome. team may be empty to use the roster team; a non-empty value
// must agree with it. On CAS conflict the whole computation is redone
// against the fresh snapshot, up to the retry budget.
func (m *Manager) Submit(ctx context.Context, gameID, username string, team domain.Team, text string) (*SubmitResult, error) {
	gameID = strings.TrimSpace(gameID)
	username = strings.TrimSpace(username)
	if gameID == "" || username == "" || strings.TrimSpace(text) == "" {
		return nil, ErrBadInput
	}

	admitted, err := m.cooldown.Admit(ctx, gameID, username)
	if err != nil {
		return nil, err
	}
	if !admitted {
		return nil, ErrCooldown
	}

	for attempt := 0; attempt < m.retries; attempt++ {
		g, err := m.store.GetGame(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if g == nil {
			return nil, ErrNotFound
		}
		switch g.Status {
		case domain.StatusWaiting:
			return nil, fmt.Errorf("%w: game has not started", ErrBadInput)
		case domain.StatusFinished:
			return nil, ErrAlreadyFinished
		}
		player, err := m.store.GetPlayer(ctx, gameID, username)
		if err != nil {
			return nil, err
		}
		if player == nil {
			return nil, fmt.Errorf("%w: player not in game", ErrBadInput)
		}
		if team != "" && team != player.Team {
			return nil, fmt.Errorf("%w: team mismatch", ErrBadInput)
		}

		res, retry, err := m.tryCommit(ctx, g, player, text)
		if err != nil {
			return nil, err
		}
		if retry {
			obslog.L().Debug("melee_commit_conflict",
				zap.String("game_id", gameID),
				zap.String("username", username),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		return res, nil
	}
	return nil, ErrConflict
}

// tryCommit computes the outcome against the snapshot in g and attempts
// the conditional write. retry=true means the snapshot went stale.
func (m *Manager) tryCommit(ctx context.Context, g *domain.GameState, player *domain.Player, text string) (*SubmitResult, bool, error) {
	now := time.Now()

	if kill, ok := referee.DetectRegicide(g.FEN, player.Team, text); ok {
		// The win is metadata: the board stays exactly as read.
		entry := &domain.MoveLogEntry{
			MoveText:     strings.TrimSpace(text),
			Username:     player.Username,
			Team:         player.Team,
			SAN:          kill.SAN,
			UCI:          kill.UCI,
			FENAfter:     g.FEN,
			CapturedKind: domain.CapturedKing,
			Timestamp:    now,
		}
		n, err := m.store.CommitMove(ctx, g.ID, g.FEN, g.FEN, player.Team, entry)
		if err != nil {
			return nil, false, err
		}
		switch {
		case n > 0:
			entry.ID = n
			g.Status = domain.StatusFinished
			g.Winner = player.Team
			g.UpdatedAt = now
			obslog.L().Info("melee_regicide",
				zap.String("game_id", g.ID),
				zap.String("kingslayer", player.Username),
				zap.String("winner", string(player.Team)),
				zap.String("uci", kill.UCI),
			)
			res := &SubmitResult{Win: true, Game: g, Entry: entry}
			m.publish(ctx, &Event{Type: "finish", GameID: g.ID, FEN: g.FEN, Winner: g.Winner, Entry: entry, Text: m.msgs.Result(res)})
			m.archive(ctx, g)
			return res, false, nil
		case n == commitConflict:
			return nil, true, nil
		case n == commitFinished:
			return nil, false, ErrAlreadyFinished
		default:
			return nil, false, ErrNotFound
		}
	}

	out, err := referee.Interpret(g.FEN, player.Team, text)
	if err != nil {
		if errors.Is(err, referee.ErrNoMatch) {
			return nil, false, ErrIllegalMove
		}
		return nil, false, err
	}
	entry := &domain.MoveLogEntry{
		MoveText:     strings.TrimSpace(text),
		Username:     player.Username,
		Team:         player.Team,
		SAN:          out.SAN,
		UCI:          out.UCI,
		FENAfter:     out.FENAfter,
		CapturedKind: kindName(out.Captured),
		Timestamp:    now,
	}
	n, err := m.store.CommitMove(ctx, g.ID, g.FEN, out.FENAfter, "", entry)
	if err != nil {
		return nil, false, err
	}
	switch {
	case n > 0:
		entry.ID = n
		g.FEN = out.FENAfter
		g.UpdatedAt = now
		obslog.L().Info("melee_commit",
			zap.String("game_id", g.ID),
			zap.String("username", player.Username),
			zap.String("team", string(player.Team)),
			zap.String("uci", out.UCI),
			zap.Bool("shadowed", out.Shadowed),
			zap.Int64("entry_id", entry.ID),
		)
		res := &SubmitResult{Game: g, Entry: entry}
		m.publish(ctx, &Event{Type: "move", GameID: g.ID, FEN: g.FEN, Entry: entry, Text: m.msgs.Result(res)})
		return res, false, nil
	case n == commitConflict:
		return nil, true, nil
	case n == commitFinished:
		return nil, false, ErrAlreadyFinished
	default:
		return nil, false, ErrNotFound
	}
}

func (m *Manager) publish(ctx context.Context, ev *Event) {
	if m.pub == nil {
		return
	}
	if err := m.pub.Publish(ctx, ev); err != nil {
		obslog.L().Warn("melee_publish_error", zap.String("game_id", ev.GameID), zap.Error(err))
	}
}

// archive persists the finished game best-effort; it never blocks or
// fails the commit path.
func (m *Manager) archive(ctx context.Context, g *domain.GameState) {
	if m.repo == nil {
		return
	}
	players, err := m.store.Players(ctx, g.ID)
	if err != nil {
		obslog.L().Error("melee_archive_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	log, err := m.store.MoveLog(ctx, g.ID)
	if err != nil {
		obslog.L().Error("melee_archive_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	if err := m.repo.SaveResult(ctx, g, players, log); err != nil {
		obslog.L().Error("melee_archive_error", zap.String("game_id", g.ID), zap.Error(err))
		return
	}
	obslog.L().Info("melee_archive", zap.String("game_id", g.ID), zap.String("winner", string(g.Winner)))
}

func kindName(pt nchess.PieceType) string {
	switch pt {
	case nchess.King:
		return "king"
	case nchess.Queen:
		return "queen"
	case nchess.Rook:
		return "rook"
	case nchess.Bishop:
		return "bishop"
	case nchess.Knight:
		return "knight"
	case nchess.Pawn:
		return "pawn"
	}
	return ""
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
