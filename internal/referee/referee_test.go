package referee

import (
	"errors"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/hyeon-dev/regichess/internal/domain"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"e2e4":    "e2e4",
		" Nxf7# ": "nf7",
		"exd5":    "ed5",
		"e8=Q+":   "e8q",
		"O-O":     "o-o",
		"0-0-0":   "o-o-o",
		"Qh4xe1":  "qh4e1",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpretCoordinateAndSAN(t *testing.T) {
	out, err := Interpret(StartingFEN, domain.TeamWhite, "e2e4")
	if err != nil {
		t.Fatalf("coordinate form: %v", err)
	}
	if out.UCI != "e2e4" || out.Moving != nchess.Pawn || out.Shadowed {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	out, err = Interpret(StartingFEN, domain.TeamWhite, "Nf3")
	if err != nil {
		t.Fatalf("SAN form: %v", err)
	}
	if out.UCI != "g1f3" {
		t.Fatalf("expected g1f3, got %s", out.UCI)
	}
}

func TestInterpretTurnless(t *testing.T) {
	// Black moves first; no white move has been committed.
	out, err := Interpret(StartingFEN, domain.TeamBlack, "e5")
	if err != nil {
		t.Fatalf("turnless black move rejected: %v", err)
	}
	if out.UCI != "e7e5" {
		t.Fatalf("expected e7e5, got %s", out.UCI)
	}
}

func TestInterpretDisambiguationForms(t *testing.T) {
	for _, in := range []string{"ngf3", "n1f3", "ng1f3"} {
		out, err := Interpret(StartingFEN, domain.TeamWhite, in)
		if err != nil {
			t.Fatalf("form %q: %v", in, err)
		}
		if out.UCI != "g1f3" {
			t.Fatalf("form %q: expected g1f3, got %s", in, out.UCI)
		}
	}
}

func TestInterpretPromotionPrefix(t *testing.T) {
	fen := "3rk3/4P3/8/8/8/8/8/4K3 w - - 0 1"
	out, err := Interpret(fen, domain.TeamWhite, "e7d8")
	if err != nil {
		t.Fatalf("promotion prefix: %v", err)
	}
	if out.To.String() != "d8" || out.Promotion == nchess.NoPieceType {
		t.Fatalf("expected promotion landing d8, got %+v", out)
	}
	if out.Captured != nchess.Rook {
		t.Fatalf("expected rook capture, got %v", out.Captured)
	}
}

func TestInterpretShadowRetryFreesPinnedPiece(t *testing.T) {
	// White rook e2 is pinned by the rook on e8. Moving it exposes the
	// white king, which this variant does not care about.
	fen := "k3r3/8/8/8/8/8/4R3/4K3 w - - 0 1"
	out, err := Interpret(fen, domain.TeamWhite, "e2d2")
	if err != nil {
		t.Fatalf("shadow retry: %v", err)
	}
	if !out.Shadowed {
		t.Fatalf("expected shadowed outcome, got %+v", out)
	}
	if out.UCI != "e2d2" {
		t.Fatalf("expected e2d2, got %s", out.UCI)
	}
}

func TestInterpretKingMoveSkipsShadowRetry(t *testing.T) {
	// d1 and d2 are covered by the rook on d8; the king truly cannot go
	// there, and the shadow retry must not be attempted for a king move.
	fen := "3r3k/8/8/8/8/8/8/4K3 w - - 0 1"
	if _, err := Interpret(fen, domain.TeamWhite, "e1d1"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for barred king move, got %v", err)
	}
	if _, err := Interpret(fen, domain.TeamWhite, "Kd2"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for barred king move, got %v", err)
	}
}

func TestInterpretNoMatch(t *testing.T) {
	if _, err := Interpret(StartingFEN, domain.TeamWhite, "e2e5"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if _, err := Interpret(StartingFEN, domain.TeamWhite, "   "); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for empty input, got %v", err)
	}
}

func TestDetectRegicideQueenTakesKing(t *testing.T) {
	fen := "4k3/8/8/7Q/8/8/8/4K3 w - - 0 1"
	kill, ok := DetectRegicide(fen, domain.TeamWhite, "Qxe8")
	if !ok {
		t.Fatalf("expected regicide")
	}
	if kill.To.String() != "e8" || kill.Moving != nchess.Queen {
		t.Fatalf("unexpected kill: %+v", kill)
	}
}

func TestDetectRegicideWhileOwnKingInCheck(t *testing.T) {
	// The queen on a7 checks the white king; the rook still reaches e8.
	fen := "4k3/q7/8/8/8/8/4R3/K7 w - - 0 1"
	kill, ok := DetectRegicide(fen, domain.TeamWhite, "e2e8")
	if !ok {
		t.Fatalf("expected regicide despite own king in check")
	}
	if !kill.Shadowed || kill.Moving != nchess.Rook {
		t.Fatalf("unexpected kill: %+v", kill)
	}
}

func TestDetectRegicideVacantThrone(t *testing.T) {
	fen := "8/8/8/8/8/8/8/4K3 w - - 0 1"
	kill, ok := DetectRegicide(fen, domain.TeamWhite, "e1e2")
	if !ok || !kill.VacantThrone {
		t.Fatalf("expected vacant-throne win, got ok=%v kill=%+v", ok, kill)
	}
}

func TestDetectRegicideNoReach(t *testing.T) {
	if _, ok := DetectRegicide(StartingFEN, domain.TeamWhite, "e2e4"); ok {
		t.Fatalf("e2e4 from the start is not a king capture")
	}
}

func TestFENSurgeryRoundTrip(t *testing.T) {
	forced, err := ForceTurn(StartingFEN, domain.TeamBlack)
	if err != nil {
		t.Fatalf("ForceTurn: %v", err)
	}
	if forced != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1" {
		t.Fatalf("unexpected forced fen: %s", forced)
	}

	sq, ok := FindKing(StartingFEN, domain.TeamBlack)
	if !ok || sq.String() != "e8" {
		t.Fatalf("FindKing: ok=%v sq=%v", ok, sq)
	}

	removed, err := RemovePiece(StartingFEN, sq)
	if err != nil {
		t.Fatalf("RemovePiece: %v", err)
	}
	if _, ok := FindKing(removed, domain.TeamBlack); ok {
		t.Fatalf("king should be gone")
	}
	if _, ok := PieceAt(removed, sq); ok {
		t.Fatalf("square should be empty")
	}
	// Black castling rights must be dropped with the king.
	if removed != "rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQ - 0 1" {
		t.Fatalf("unexpected fen after king removal: %s", removed)
	}

	placed, err := PlacePiece(removed, sq, 'n')
	if err != nil {
		t.Fatalf("PlacePiece: %v", err)
	}
	if ch, ok := PieceAt(placed, sq); !ok || ch != 'n' {
		t.Fatalf("expected decoy knight on e8, got %q ok=%v", ch, ok)
	}
}
