package domain

import "time"

// Team identifies a side of the board. Any number of players may share one.
type Team string

const (
	TeamWhite Team = "white"
	TeamBlack Team = "black"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamWhite {
		return TeamBlack
	}
	return TeamWhite
}

// GameStatus is the lifecycle state of a melee game. Transitions are
// forward-only: waiting → playing → finished.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// GameState is the single shared mutable record of a game. The FEN is the
// canonical Position; it advances only through the store's conditional
// write.
type GameState struct {
	ID        string     `json:"id"`
	FEN       string     `json:"fen"`
	Status    GameStatus `json:"status"`
	Winner    Team       `json:"winner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Player is a roster entry. Immutable once created; the team never changes
// after join.
type Player struct {
	Username string    `json:"username"`
	Team     Team      `json:"team"`
	JoinedAt time.Time `json:"joined_at"`
}

// MoveLogEntry is one committed move. The log is append-only and each
// entry corresponds to exactly one successful commit. FENAfter is the
// Position following the entry; the terminal regicide entry keeps the
// pre-kill FEN because a direct king capture has no legal encoding.
type MoveLogEntry struct {
	ID           int64     `json:"id"`
	MoveText     string    `json:"move_text"`
	Username     string    `json:"username"`
	Team         Team      `json:"team"`
	SAN          string    `json:"san,omitempty"`
	UCI          string    `json:"uci,omitempty"`
	FENAfter     string    `json:"fen_after"`
	CapturedKind string    `json:"captured_kind,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// CapturedKing marks the terminal regicide entry.
const CapturedKing = "king"

// IsKill reports whether the entry recorded the winning king capture.
func (e *MoveLogEntry) IsKill() bool { return e.CapturedKind == CapturedKing }
