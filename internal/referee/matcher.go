package referee

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// ErrNoMatch means the input matched no legal move, even after the shadow
// retry with the submitter's own king lifted off the board.
var ErrNoMatch = errors.New("no legal move matches input")

// Outcome is a concrete interpreted move, resolved against a specific
// Position snapshot.
type Outcome struct {
	From      nchess.Square
	To        nchess.Square
	Moving    nchess.PieceType
	Promotion nchess.PieceType
	Captured  nchess.PieceType
	SAN       string
	UCI       string
	FENAfter  string
	// Shadowed marks moves that only became legal once the submitter's own
	// king was removed. Check does not restrict movement in this variant.
	Shadowed bool
}

// Normalize strips capture, check and promotion decorations from raw move
// text and lowercases it. Both user input and generated candidates pass
// through here, so "exd5", "e8=Q+" and "Nxf7#" compare cleanly.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer("x", "", "+", "", "#", "", "=", "", ":", "").Replace(s)
	switch s {
	case "0-0":
		s = "o-o"
	case "0-0-0":
		s = "o-o-o"
	}
	return s
}

// Interpret resolves free-text input to a legal move for the submitting
// team, forcing the side-to-move regardless of whose "turn" it is. If the
// strict pass finds nothing, it retries on a shadow board with the
// submitter's king removed, unless the input itself denotes a king move.
func Interpret(fen string, team domain.Team, text string) (*Outcome, error) {
	norm := Normalize(text)
	if norm == "" {
		return nil, ErrNoMatch
	}
	forced, err := ForceTurn(fen, team)
	if err != nil {
		return nil, err
	}
	game, err := gameFromFEN(forced)
	if err != nil {
		return nil, err
	}
	if mv := matchIn(game.Position(), movePtrs(game.Position().ValidMoves()), norm); mv != nil {
		return buildOutcome(game, mv, false)
	}
	if looksLikeKingMove(game.Position(), norm, colorOf(team)) {
		return nil, ErrNoMatch
	}
	kingSq, ok := FindKing(forced, team)
	if !ok {
		return nil, ErrNoMatch
	}
	shadow, err := RemovePiece(forced, kingSq)
	if err != nil {
		return nil, err
	}
	sgame, err := gameFromFEN(shadow)
	if err != nil {
		return nil, err
	}
	mv := matchIn(sgame.Position(), movePtrs(sgame.Position().ValidMoves()), norm)
	if mv == nil {
		return nil, ErrNoMatch
	}
	return buildOutcome(sgame, mv, true)
}

// MatchLanding matches input against the legal moves of fen that land on
// target. The fen is taken as-is; callers force the turn and stage decoys
// beforehand. Used for regicide detection and kill-frame synthesis.
func MatchLanding(fen string, target nchess.Square, text string) (*Outcome, bool) {
	norm := Normalize(text)
	if norm == "" {
		return nil, false
	}
	game, err := gameFromFEN(fen)
	if err != nil {
		return nil, false
	}
	var landing []*nchess.Move
	for _, mv := range game.Position().ValidMoves() {
		mv := mv
		if mv.S2() == target {
			landing = append(landing, &mv)
		}
	}
	mv := matchIn(game.Position(), landing, norm)
	if mv == nil {
		return nil, false
	}
	out, err := buildOutcome(game, mv, false)
	if err != nil {
		return nil, false
	}
	return out, true
}

// movePtrs converts a slice of moves to a slice of pointers to its elements.
func movePtrs(moves []nchess.Move) []*nchess.Move {
	out := make([]*nchess.Move, len(moves))
	for i := range moves {
		out[i] = &moves[i]
	}
	return out
}

// matchIn applies the matching tiers in spec order: exact long-form
// coordinates, stripped short algebraic, bare promotion prefix, then the
// tolerant piece-letter disambiguation forms for non-pawns.
func matchIn(pos *nchess.Position, moves []*nchess.Move, norm string) *nchess.Move {
	for _, mv := range moves {
		if mv.String() == norm {
			return mv
		}
	}
	san := nchess.AlgebraicNotation{}
	for _, mv := range moves {
		if Normalize(san.Encode(pos, mv)) == norm {
			return mv
		}
	}
	for _, mv := range moves {
		if mv.Promo() != nchess.NoPieceType {
			if u := mv.String(); len(u) > 4 && u[:4] == norm {
				return mv
			}
		}
	}
	for _, mv := range moves {
		pt := pos.Board().Piece(mv.S1()).Type()
		if pt == nchess.Pawn || pt == nchess.NoPieceType {
			continue
		}
		letter := pieceLetter(pt)
		from, to := mv.S1().String(), mv.S2().String()
		switch norm {
		case letter + string(from[0]) + to, letter + string(from[1]) + to, letter + from + to:
			return mv
		}
	}
	return nil
}

// looksLikeKingMove is the deterministic tie-break for whether to skip the
// shadow retry: piece-letter input starting with "k", any castling form,
// or coordinate input whose source square holds the submitter's king.
func looksLikeKingMove(pos *nchess.Position, norm string, color nchess.Color) bool {
	if strings.HasPrefix(norm, "k") || strings.HasPrefix(norm, "o-o") {
		return true
	}
	if len(norm) >= 4 {
		if sq, ok := squareFromText(norm[:2]); ok {
			p := pos.Board().Piece(sq)
			return p.Type() == nchess.King && p.Color() == color
		}
	}
	return false
}

func buildOutcome(game *nchess.Game, mv *nchess.Move, shadowed bool) (*Outcome, error) {
	pos := game.Position()
	sanText := nchess.AlgebraicNotation{}.Encode(pos, mv)
	moving := pos.Board().Piece(mv.S1()).Type()
	captured := nchess.NoPieceType
	if mv.HasTag(nchess.EnPassant) {
		captured = nchess.Pawn
	} else if target := pos.Board().Piece(mv.S2()); target != nchess.NoPiece {
		captured = target.Type()
	}
	if err := game.Move(mv, nil); err != nil {
		return nil, fmt.Errorf("apply matched move %s: %w", mv, err)
	}
	return &Outcome{
		From:      mv.S1(),
		To:        mv.S2(),
		Moving:    moving,
		Promotion: mv.Promo(),
		Captured:  captured,
		SAN:       sanText,
		UCI:       mv.String(),
		FENAfter:  game.FEN(),
		Shadowed:  shadowed,
	}, nil
}

func pieceLetter(pt nchess.PieceType) string {
	switch pt {
	case nchess.King:
		return "k"
	case nchess.Queen:
		return "q"
	case nchess.Rook:
		return "r"
	case nchess.Bishop:
		return "b"
	case nchess.Knight:
		return "n"
	}
	return ""
}
