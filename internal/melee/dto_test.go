package melee

import (
	"fmt"
	"testing"
	"time"

	"github.com/hyeon-dev/regichess/internal/replay"
	"github.com/hyeon-dev/regichess/pkg/meleedto"
)

func TestAsDomainError(t *testing.T) {
	cases := []struct {
		err       error
		code      string
		retryable bool
	}{
		{ErrBadInput, meleedto.CodeBadInput, false},
		{ErrNotFound, meleedto.CodeNotFound, false},
		{ErrIllegalMove, meleedto.CodeIllegalMove, false},
		{ErrCooldown, meleedto.CodeCooldownActive, true},
		{ErrConflict, meleedto.CodeBusyConflict, true},
		{ErrAlreadyFinished, meleedto.CodeAlreadyFinished, false},
		{fmt.Errorf("wrapped: %w", ErrIllegalMove), meleedto.CodeIllegalMove, false},
	}
	for _, tc := range cases {
		de := AsDomainError(tc.err)
		if de.Code != tc.code || de.Retryable != tc.retryable {
			t.Fatalf("%v: want %s/%v, got %s/%v", tc.err, tc.code, tc.retryable, de.Code, de.Retryable)
		}
	}
}

func TestFrameViews(t *testing.T) {
	frames := []replay.Frame{
		{FEN: "fen-a", At: 0},
		{FEN: "fen-b", At: 1500 * time.Millisecond, Impact: true},
	}
	views := FrameViews(frames)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[1].FEN != "fen-b" || views[1].AtMS != 1500 || !views[1].Impact {
		t.Fatalf("unexpected view: %+v", views[1])
	}
}
