package referee

import (
	nchess "github.com/corentings/chess/v2"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// decoyLetter is the non-royal stand-in placed on the enemy king's square.
// The rules library never generates a legal king capture, so the king is
// swapped for a same-colored knight: capture legality depends only on
// occupancy and color, and a knight cannot check or pin along a line.
func decoyLetter(team domain.Team) rune {
	if team == domain.TeamWhite {
		return 'N'
	}
	return 'n'
}

// Kill is a detected regicide. It carries the capturing geometry for the
// move log; the board itself stays as read. The win is metadata, not a
// played move.
type Kill struct {
	From      nchess.Square
	To        nchess.Square
	Moving    nchess.PieceType
	Promotion nchess.PieceType
	SAN       string
	UCI       string
	// VacantThrone is the defensive case: the enemy king was already gone.
	VacantThrone bool
	Shadowed     bool
}

// DetectRegicide decides whether the input is a winning king capture for
// the submitting team against the given Position. All work happens on
// throwaway copies; no mutation ever escapes.
func DetectRegicide(fen string, team domain.Team, text string) (*Kill, bool) {
	norm := Normalize(text)
	if norm == "" {
		return nil, false
	}
	forced, err := ForceTurn(fen, team)
	if err != nil {
		return nil, false
	}
	throne, ok := FindKing(forced, team.Opponent())
	if !ok {
		return &Kill{VacantThrone: true}, true
	}

	work := forced
	shadowed := false
	probe, err := gameFromFEN(forced)
	if err != nil {
		return nil, false
	}
	if !looksLikeKingMove(probe.Position(), norm, colorOf(team)) {
		if kingSq, found := FindKing(forced, team); found {
			if work, err = RemovePiece(forced, kingSq); err != nil {
				return nil, false
			}
			shadowed = true
		}
	}
	work, err = PlacePiece(work, throne, decoyLetter(team.Opponent()))
	if err != nil {
		return nil, false
	}
	// The decoy replaced the king, so the victim's castling rights are dead
	// weight either way; leaving them is harmless for reachability.
	out, ok := MatchLanding(work, throne, text)
	if !ok {
		return nil, false
	}
	return &Kill{
		From:      out.From,
		To:        out.To,
		Moving:    out.Moving,
		Promotion: out.Promotion,
		SAN:       out.SAN,
		UCI:       out.UCI,
		Shadowed:  shadowed,
	}, true
}

// SynthesizeKill builds a depictable board for a committed king capture.
// The true final position is not a legal chess position, so the capture
// is re-staged against a decoy and actually executed: the killer's own
// king comes off first unless it is itself the capturer, and goes back
// afterwards if its square stayed empty. The second return reports
// whether an attacking line was depicted; on false the victim's king is
// simply removed.
func SynthesizeKill(fen string, team domain.Team, text string) (string, bool) {
	forced, err := ForceTurn(fen, team)
	if err != nil {
		return fen, false
	}
	throne, ok := FindKing(forced, team.Opponent())
	if !ok {
		return forced, false
	}
	fallback := func() (string, bool) {
		fb, err := RemovePiece(forced, throne)
		if err != nil {
			return fen, false
		}
		return fb, false
	}

	norm := Normalize(text)
	work := forced
	removed := false
	kingSq, hasKing := FindKing(forced, team)
	capturerIsKing := false
	if from, ok2 := squareFromText(firstSquare(norm)); ok2 {
		if ch, occ := PieceAt(forced, from); occ && ch == kingLetter(team) {
			capturerIsKing = true
		}
	}
	if hasKing && !capturerIsKing {
		if work, err = RemovePiece(forced, kingSq); err != nil {
			return fallback()
		}
		removed = true
	}
	work, err = PlacePiece(work, throne, decoyLetter(team.Opponent()))
	if err != nil {
		return fallback()
	}
	out, ok := MatchLanding(work, throne, text)
	if !ok {
		return fallback()
	}
	frame := out.FENAfter
	if removed {
		if _, occ := PieceAt(frame, kingSq); !occ {
			if restored, err := PlacePiece(frame, kingSq, kingLetter(team)); err == nil {
				frame = restored
			}
		}
	}
	return frame, true
}

func firstSquare(norm string) string {
	if len(norm) >= 2 {
		return norm[:2]
	}
	return norm
}
