package meleedto

import "time"

// GameView is the externally visible game state.
type GameView struct {
	ID     string `json:"id"`
	FEN    string `json:"fen"`
	Status string `json:"status"`
	Winner string `json:"winner,omitempty"`
}

type PlayerView struct {
	Username string `json:"username"`
	Team     string `json:"team"`
}

// MoveView is one committed log entry.
type MoveView struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Team     string    `json:"team"`
	SAN      string    `json:"san"`
	UCI      string    `json:"uci"`
	FEN      string    `json:"fen"`
	Captured string    `json:"captured,omitempty"`
	At       time.Time `json:"at"`
}

type FrameView struct {
	FEN    string `json:"fen"`
	AtMS   int64  `json:"at_ms"`
	Impact bool   `json:"impact,omitempty"`
}

type CreateGameRequest struct{}

type CreateGameResponse struct {
	Game *GameView `json:"game"`
}

type JoinRequest struct {
	GameID   string `json:"gameId"`
	Username string `json:"username"`
	Team     string `json:"team"`
}

type JoinResponse struct {
	Player  *PlayerView `json:"player"`
	Started bool        `json:"started"`
}

type SubmitRequest struct {
	GameID   string `json:"gameId"`
	Username string `json:"username"`
	Team     string `json:"team,omitempty"`
	MoveText string `json:"moveText"`
}

// SubmitResponse carries exactly one of the contract's outcomes: an
// accepted move, an accepted win, or (via DomainError) a rejection.
type SubmitResponse struct {
	Win  bool      `json:"win"`
	Game *GameView `json:"game"`
	Move *MoveView `json:"move"`
}

type GameRequest struct {
	GameID string `json:"gameId"`
}

type GameResponse struct {
	Game    *GameView    `json:"game"`
	Players []PlayerView `json:"players"`
	Moves   []MoveView   `json:"moves"`
}

type ReplayRequest struct {
	GameID string `json:"gameId"`
}

type ReplayResponse struct {
	Frames []FrameView `json:"frames"`
}
