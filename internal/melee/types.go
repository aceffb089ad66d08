package melee

import (
	"errors"
	"time"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// Rejection taxonomy. Every rejection is a strict no-op on game state;
// only CAS contention is retried internally before ErrConflict surfaces.
var (
	ErrBadInput        = errors.New("bad input")
	ErrNotFound        = errors.New("game not found")
	ErrIllegalMove     = errors.New("no legal move matches")
	ErrCooldown        = errors.New("cooldown active")
	ErrConflict        = errors.New("board busy, commit retries exhausted")
	ErrAlreadyFinished = errors.New("game already finished")
)

// SubmitResult is the single accepted outcome of a submission: either a
// committed standard move or the terminal win.
type SubmitResult struct {
	Win   bool
	Game  *domain.GameState
	Entry *domain.MoveLogEntry
}

// Options tunes the manager. Zero values select defaults.
type Options struct {
	// CooldownWindow throttles per-player submissions; negative disables.
	CooldownWindow time.Duration
	// CommitRetries bounds the CAS loop before ErrConflict.
	CommitRetries int
	// GameTTL bounds how long an untouched game lives in Redis.
	GameTTL time.Duration
}

// DefaultCommitRetries bounds the optimistic commit loop.
const DefaultCommitRetries = 5
