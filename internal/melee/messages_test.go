package melee

import (
	"strings"
	"testing"

	"github.com/hyeon-dev/regichess/internal/domain"
	"github.com/hyeon-dev/regichess/internal/msgcat"
	"github.com/hyeon-dev/regichess/pkg/meleedto"
)

func newTestMessages(t *testing.T) *Messages {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewMessages(cat)
}

func TestMessagesReject(t *testing.T) {
	ms := newTestMessages(t)
	cases := []struct {
		err  error
		want string
	}{
		{ErrBadInput, "Could not read"},
		{ErrNotFound, "melee-x"},
		{ErrIllegalMove, "e9"},
		{ErrCooldown, "one move per second"},
		{ErrConflict, "Send it again"},
		{ErrAlreadyFinished, "white took the king"},
	}
	for _, tc := range cases {
		out := ms.Reject(tc.err, "melee-x", "e9", domain.TeamWhite)
		if !strings.Contains(out, tc.want) {
			t.Fatalf("%v: expected %q in %q", tc.err, tc.want, out)
		}
	}
}

func TestMessagesRejectWithoutCatalog(t *testing.T) {
	var ms *Messages
	if got := ms.Reject(ErrCooldown, "g", "e4", ""); got != ErrCooldown.Error() {
		t.Fatalf("nil catalog must fall back to the error text, got %q", got)
	}
}

func TestMessagesDomainError(t *testing.T) {
	ms := newTestMessages(t)
	de := ms.DomainError(ErrIllegalMove, "melee-x", "e2e5", "")
	if de.Code != meleedto.CodeIllegalMove {
		t.Fatalf("code lost in rendering: %+v", de)
	}
	if !strings.Contains(de.Message, "e2e5") {
		t.Fatalf("message not rendered from the catalog: %+v", de)
	}
}

func TestMessagesResult(t *testing.T) {
	ms := newTestMessages(t)

	move := &SubmitResult{Entry: &domain.MoveLogEntry{Username: "alice", Team: domain.TeamWhite, SAN: "e4"}}
	if out := ms.Result(move); !strings.Contains(out, "alice plays e4") {
		t.Fatalf("move text: %q", out)
	}

	capture := &SubmitResult{Entry: &domain.MoveLogEntry{Username: "alice", Team: domain.TeamWhite, SAN: "exd5", CapturedKind: "pawn"}}
	if out := ms.Result(capture); !strings.Contains(out, "taking a pawn") {
		t.Fatalf("capture text: %q", out)
	}

	win := &SubmitResult{Win: true, Entry: &domain.MoveLogEntry{Username: "alice", Team: domain.TeamWhite, CapturedKind: domain.CapturedKing}}
	out := ms.Result(win)
	if !strings.Contains(out, "REGICIDE") || !strings.Contains(out, "black king") || !strings.Contains(out, "white wins") {
		t.Fatalf("win text: %q", out)
	}
}

func TestManagerRejectText(t *testing.T) {
	m := newTestManager(t, Options{CooldownWindow: -1})
	if got := m.RejectText(ErrCooldown, "g", "e4", ""); got != ErrCooldown.Error() {
		t.Fatalf("without a catalog the plain error is the fallback, got %q", got)
	}
	m.AttachMessages(newTestMessages(t))
	if out := m.RejectText(ErrCooldown, "g", "e4", ""); !strings.Contains(out, "one move per second") {
		t.Fatalf("catalog text expected, got %q", out)
	}
}

func TestMessagesStarted(t *testing.T) {
	ms := newTestMessages(t)
	if out := ms.Started(); !strings.Contains(out, "melee begins") {
		t.Fatalf("start text: %q", out)
	}
}
