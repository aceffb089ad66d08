package melee

import (
	"errors"

	"github.com/hyeon-dev/regichess/internal/domain"
	"github.com/hyeon-dev/regichess/internal/replay"
	"github.com/hyeon-dev/regichess/pkg/meleedto"
)

// GameView converts a game state for the transport layer.
func GameView(g *domain.GameState) *meleedto.GameView {
	if g == nil {
		return nil
	}
	return &meleedto.GameView{
		ID:     g.ID,
		FEN:    g.FEN,
		Status: string(g.Status),
		Winner: string(g.Winner),
	}
}

func MoveView(e *domain.MoveLogEntry) *meleedto.MoveView {
	if e == nil {
		return nil
	}
	return &meleedto.MoveView{
		ID:       e.ID,
		Username: e.Username,
		Team:     string(e.Team),
		SAN:      e.SAN,
		UCI:      e.UCI,
		FEN:      e.FENAfter,
		Captured: e.CapturedKind,
		At:       e.Timestamp,
	}
}

func MoveViews(log []domain.MoveLogEntry) []meleedto.MoveView {
	out := make([]meleedto.MoveView, 0, len(log))
	for i := range log {
		out = append(out, *MoveView(&log[i]))
	}
	return out
}

func FrameViews(frames []replay.Frame) []meleedto.FrameView {
	out := make([]meleedto.FrameView, 0, len(frames))
	for _, f := range frames {
		out = append(out, meleedto.FrameView{FEN: f.FEN, AtMS: f.At.Milliseconds(), Impact: f.Impact})
	}
	return out
}

func PlayerViews(ps []domain.Player) []meleedto.PlayerView {
	out := make([]meleedto.PlayerView, 0, len(ps))
	for _, p := range ps {
		out = append(out, meleedto.PlayerView{Username: p.Username, Team: string(p.Team)})
	}
	return out
}

// AsDomainError maps service sentinels onto the stable rejection codes.
// Unknown errors come back as a non-retryable bad_input so transports
// never leak internals.
func AsDomainError(err error) meleedto.DomainError {
	switch {
	case errors.Is(err, ErrNotFound):
		return meleedto.DomainError{Code: meleedto.CodeNotFound, Message: err.Error()}
	case errors.Is(err, ErrIllegalMove):
		return meleedto.DomainError{Code: meleedto.CodeIllegalMove, Message: err.Error()}
	case errors.Is(err, ErrCooldown):
		return meleedto.DomainError{Code: meleedto.CodeCooldownActive, Message: err.Error(), Retryable: true}
	case errors.Is(err, ErrConflict):
		return meleedto.DomainError{Code: meleedto.CodeBusyConflict, Message: err.Error(), Retryable: true}
	case errors.Is(err, ErrAlreadyFinished):
		return meleedto.DomainError{Code: meleedto.CodeAlreadyFinished, Message: err.Error()}
	default:
		return meleedto.DomainError{Code: meleedto.CodeBadInput, Message: err.Error()}
	}
}
