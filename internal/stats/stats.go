// Package stats turns a finished melee log into per-team scoreboards.
// Aggregation is a pure function of its inputs so the same game always
// renders the same result.
package stats

import (
	"sort"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// Point values per captured kind. The king bonus dwarfs material on
// purpose: landing the kill should top the board in almost every game.
var piecePoints = map[string]int{
	"pawn":   1,
	"knight": 3,
	"bishop": 3,
	"rook":   5,
	"queen":  9,
	"king":   50,
}

const (
	BadgeKingslayer  = "kingslayer"
	BadgeMVP         = "mvp"
	BadgeHeartbreak  = "heartbreaker"
	BadgeSprinter    = "sprinter"
	BadgeSniper      = "sniper"
	BadgePacifist    = "pacifist"
	BadgeGhost       = "ghost"
	BadgeLuckyCharm  = "lucky_charm"
	luckyCharmChance = 0.1
)

// Line is one player's row on a team board.
type Line struct {
	Rank     int            `json:"rank"`
	Username string         `json:"username"`
	Team     domain.Team    `json:"team"`
	Moves    int            `json:"moves"`
	Score    int            `json:"score"`
	Captures map[string]int `json:"captures,omitempty"`
	Badges   []string       `json:"badges,omitempty"`
}

// Board is one team's ranked scoreboard.
type Board struct {
	Team  domain.Team `json:"team"`
	Won   bool        `json:"won"`
	Total int         `json:"total"`
	Lines []Line      `json:"lines"`
}

// Summary is the full post-game report.
type Summary struct {
	Winner     domain.Team `json:"winner"`
	Kingslayer string      `json:"kingslayer,omitempty"`
	White      Board       `json:"white"`
	Black      Board       `json:"black"`
}

// Aggregator computes summaries. Chance feeds the cosmetic lucky-charm
// badge; leaving it nil disables the badge, which keeps Aggregate fully
// deterministic.
type Aggregator struct {
	Chance func() float64
}

func New() *Aggregator { return &Aggregator{} }

// Aggregate folds the move log over the roster. Roster players with no
// committed move still appear with zero lines.
func (a *Aggregator) Aggregate(log []domain.MoveLogEntry, roster []domain.Player, winner domain.Team) *Summary {
	lines := make(map[string]*Line, len(roster))
	order := make([]string, 0, len(roster))
	for _, p := range roster {
		if _, ok := lines[p.Username]; ok {
			continue
		}
		lines[p.Username] = &Line{Username: p.Username, Team: p.Team}
		order = append(order, p.Username)
	}

	kingslayer := ""
	for _, e := range log {
		ln, ok := lines[e.Username]
		if !ok {
			// Log entries always come from roster members, but a
			// truncated roster should not crash the report.
			ln = &Line{Username: e.Username, Team: e.Team}
			lines[e.Username] = ln
			order = append(order, e.Username)
		}
		ln.Moves++
		if e.CapturedKind != "" {
			if ln.Captures == nil {
				ln.Captures = map[string]int{}
			}
			ln.Captures[e.CapturedKind]++
			ln.Score += piecePoints[e.CapturedKind]
		}
		if e.IsKill() {
			kingslayer = e.Username
		}
	}

	sum := &Summary{
		Winner:     winner,
		Kingslayer: kingslayer,
		White:      Board{Team: domain.TeamWhite, Won: winner == domain.TeamWhite},
		Black:      Board{Team: domain.TeamBlack, Won: winner == domain.TeamBlack},
	}
	for _, name := range order {
		ln := lines[name]
		switch ln.Team {
		case domain.TeamWhite:
			sum.White.Lines = append(sum.White.Lines, *ln)
			sum.White.Total += ln.Score
		case domain.TeamBlack:
			sum.Black.Lines = append(sum.Black.Lines, *ln)
			sum.Black.Total += ln.Score
		}
	}
	rankBoard(&sum.White)
	rankBoard(&sum.Black)
	a.assignBadges(sum)
	return sum
}

// rankBoard sorts by score descending, then by fewer moves (an efficient
// contribution outranks a spammy one), then username for stability, and
// assigns dense ranks starting at 1.
func rankBoard(b *Board) {
	sort.Slice(b.Lines, func(i, j int) bool {
		li, lj := b.Lines[i], b.Lines[j]
		if li.Score != lj.Score {
			return li.Score > lj.Score
		}
		if li.Moves != lj.Moves {
			return li.Moves < lj.Moves
		}
		return li.Username < lj.Username
	})
	rank := 0
	for i := range b.Lines {
		if i == 0 || b.Lines[i].Score != b.Lines[i-1].Score || b.Lines[i].Moves != b.Lines[i-1].Moves {
			rank++
		}
		b.Lines[i].Rank = rank
	}
}

func (a *Aggregator) assignBadges(sum *Summary) {
	for _, b := range []*Board{&sum.White, &sum.Black} {
		maxMoves := 0
		for _, ln := range b.Lines {
			if ln.Moves > maxMoves {
				maxMoves = ln.Moves
			}
		}
		for i := range b.Lines {
			ln := &b.Lines[i]
			if ln.Username == sum.Kingslayer && sum.Kingslayer != "" {
				ln.Badges = append(ln.Badges, BadgeKingslayer)
			}
			if b.Won && ln.Rank == 1 && ln.Score > 0 {
				ln.Badges = append(ln.Badges, BadgeMVP)
			}
			if !b.Won && ln.Rank == 1 && ln.Score >= 5 {
				ln.Badges = append(ln.Badges, BadgeHeartbreak)
			}
			if maxMoves >= 5 && ln.Moves == maxMoves {
				ln.Badges = append(ln.Badges, BadgeSprinter)
			}
			if ln.Score >= 6 && ln.Moves > 0 && ln.Score >= 3*ln.Moves {
				ln.Badges = append(ln.Badges, BadgeSniper)
			}
			if ln.Moves >= 10 && ln.Score == 0 {
				ln.Badges = append(ln.Badges, BadgePacifist)
			}
			if ln.Moves <= 1 {
				ln.Badges = append(ln.Badges, BadgeGhost)
			}
			if a.Chance != nil && a.Chance() < luckyCharmChance {
				ln.Badges = append(ln.Badges, BadgeLuckyCharm)
			}
		}
	}
}
