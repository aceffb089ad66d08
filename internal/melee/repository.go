package melee

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// Repository archives finished games to Postgres. Derived stats are never
// persisted; the archive is the raw record: final state, roster and log.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished game into the archive.
func (r *Repository) SaveResult(ctx context.Context, g *domain.GameState, players []domain.Player, log []domain.MoveLogEntry) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}

	var kingslayer string
	for i := range log {
		if log[i].IsKill() {
			kingslayer = log[i].Username
		}
	}
	logRaw, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal move log: %w", err)
	}
	rosterRaw, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	pgn := buildPGN(g, players, log)
	duration := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO melee_games (
        game_id, winner, final_fen, kingslayer,
        move_count, moves, roster, pgn,
        started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6::jsonb,$7::jsonb,$8,$9,$10,$11
      ) ON CONFLICT (game_id) DO UPDATE SET
        winner=EXCLUDED.winner,
        final_fen=EXCLUDED.final_fen,
        kingslayer=EXCLUDED.kingslayer,
        move_count=EXCLUDED.move_count,
        moves=EXCLUDED.moves,
        roster=EXCLUDED.roster,
        pgn=EXCLUDED.pgn,
        started_at=EXCLUDED.started_at,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err = r.db.ExecContext(ctx, q,
		g.ID, string(g.Winner), g.FEN, kingslayer,
		len(log), string(logRaw), string(rosterRaw), pgn,
		g.CreatedAt, g.UpdatedAt, duration,
	)
	return err
}

// buildPGN renders a readable record of the melee. Moves do not alternate
// sides, so the numbering is per committed entry rather than per turn
// pair; the headers carry the full rosters.
func buildPGN(g *domain.GameState, players []domain.Player, log []domain.MoveLogEntry) string {
	var b strings.Builder
	date := g.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"Regichess Melee\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(teamRoster(players, domain.TeamWhite))))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(teamRoster(players, domain.TeamBlack))))
	b.WriteString("[Variant \"Turnless regicide\"]\n")
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult(g.Winner)))

	for i := range log {
		san := strings.TrimSpace(log[i].SAN)
		if san == "" {
			san = strings.TrimSpace(log[i].MoveText)
		}
		b.WriteString(fmt.Sprintf("%d. %s ", i+1, san))
	}
	b.WriteString(pgnResult(g.Winner))
	return b.String()
}

func teamRoster(players []domain.Player, team domain.Team) string {
	var names []string
	for _, p := range players {
		if p.Team == team {
			names = append(names, p.Username)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func pgnResult(winner domain.Team) string {
	switch winner {
	case domain.TeamWhite:
		return "1-0"
	case domain.TeamBlack:
		return "0-1"
	default:
		return "*"
	}
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
