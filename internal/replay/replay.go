// Package replay schedules a finished game's positions for playback.
// Most of the budget goes to the early moves at a uniform clip; the last
// few frames slow down into a fixed-interval tail, and a regicide ending
// gets a synthesized impact frame since the real capture has no legal
// board.
package replay

import (
	"time"

	"github.com/hyeon-dev/regichess/internal/config"
	"github.com/hyeon-dev/regichess/internal/domain"
	"github.com/hyeon-dev/regichess/internal/referee"
)

const (
	DefaultTotal      = 40 * time.Second
	DefaultTailEvery  = 2 * time.Second
	DefaultTailFrames = 3
)

// Frame is one scheduled board.
type Frame struct {
	FEN    string        `json:"fen"`
	At     time.Duration `json:"at"`
	Impact bool          `json:"impact,omitempty"`
}

// Builder holds the pacing knobs. The zero value is unusable; use
// NewBuilder for the defaults.
type Builder struct {
	Total      time.Duration
	TailEvery  time.Duration
	TailFrames int
}

func NewBuilder() *Builder {
	return &Builder{
		Total:      DefaultTotal,
		TailEvery:  DefaultTailEvery,
		TailFrames: DefaultTailFrames,
	}
}

// FromConfig builds a Builder from the configured pacing knobs,
// falling back to the defaults for anything unset.
func FromConfig(cfg *config.AppConfig) *Builder {
	b := NewBuilder()
	if cfg == nil {
		return b
	}
	if cfg.ReplayTotal > 0 {
		b.Total = cfg.ReplayTotal
	}
	if cfg.ReplayTailEvery > 0 {
		b.TailEvery = cfg.ReplayTailEvery
	}
	if cfg.ReplayTailFrames > 0 {
		b.TailFrames = cfg.ReplayTailFrames
	}
	return b
}

// Build turns the move log into scheduled frames. Each entry contributes
// the position it produced; a terminal king capture is re-staged into a
// depictable board and flagged as the impact frame.
func (b *Builder) Build(log []domain.MoveLogEntry) []Frame {
	if len(log) == 0 {
		return nil
	}
	frames := make([]Frame, 0, len(log))
	at := time.Duration(0)
	early, tail := b.intervals(len(log))
	for i := range log {
		e := &log[i]
		f := Frame{FEN: e.FENAfter, At: at}
		if e.IsKill() {
			// FENAfter on a kill entry is the pre-kill board.
			fen, _ := referee.SynthesizeKill(e.FENAfter, e.Team, e.UCI)
			f.FEN = fen
			f.Impact = true
		}
		frames = append(frames, f)
		if len(log)-i-1 <= b.tailLen(len(log)) {
			at += tail
		} else {
			at += early
		}
	}
	return frames
}

func (b *Builder) tailLen(n int) int {
	if n < b.TailFrames {
		return n
	}
	return b.TailFrames
}

// intervals splits the budget: the last tailLen gaps get the fixed slow
// interval, the remaining gaps share the rest of the budget evenly so
// playback actually ends at Total.
func (b *Builder) intervals(n int) (early, tail time.Duration) {
	tail = b.TailEvery
	tl := b.tailLen(n)
	earlyGaps := n - 1 - tl
	if earlyGaps < 1 {
		return tail, tail
	}
	budget := b.Total - time.Duration(tl)*tail
	if budget < 0 {
		budget = 0
	}
	early = budget / time.Duration(earlyGaps)
	return early, tail
}
