package referee

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/hyeon-dev/regichess/internal/domain"
)

// StartingFEN is the canonical initial Position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// All board edits in this package are textual rewrites of the FEN
// placement field. The rules library refuses positions it considers
// unreachable (and will never generate a king capture), so shadow boards
// and decoys are produced outside of it and fed back in as fresh values.
// Nothing here mutates a live game; every function returns a new FEN.

func colorOf(t domain.Team) nchess.Color {
	if t == domain.TeamWhite {
		return nchess.White
	}
	return nchess.Black
}

func kingLetter(t domain.Team) rune {
	if t == domain.TeamWhite {
		return 'K'
	}
	return 'k'
}

func splitFEN(fen string) ([]string, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) != 6 {
		return nil, fmt.Errorf("malformed fen %q: expected 6 fields, got %d", fen, len(fields))
	}
	return fields, nil
}

func parsePlacement(field string) (map[nchess.Square]rune, error) {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("malformed placement %q", field)
	}
	board := make(map[nchess.Square]rune)
	for i, row := range ranks {
		rank := nchess.Rank8 - nchess.Rank(i)
		file := nchess.FileA
		for _, ch := range row {
			switch {
			case ch >= '1' && ch <= '8':
				file += nchess.File(ch - '0')
			case strings.ContainsRune("KQRBNPkqrbnp", ch):
				if file > nchess.FileH {
					return nil, fmt.Errorf("placement overflow in rank %q", row)
				}
				board[nchess.NewSquare(file, rank)] = ch
				file++
			default:
				return nil, fmt.Errorf("bad placement char %q", ch)
			}
		}
		if file != nchess.FileH+1 {
			return nil, fmt.Errorf("rank %q does not cover 8 files", row)
		}
	}
	return board, nil
}

func encodePlacement(board map[nchess.Square]rune) string {
	var sb strings.Builder
	for i := 0; i < 8; i++ {
		rank := nchess.Rank8 - nchess.Rank(i)
		empty := 0
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			if ch, ok := board[nchess.NewSquare(file, rank)]; ok {
				if empty > 0 {
					sb.WriteByte(byte('0' + empty))
					empty = 0
				}
				sb.WriteRune(ch)
			} else {
				empty++
			}
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if i < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ForceTurn rewrites the side-to-move to the submitting team. This is what
// makes play turnless: every submission sees a Position where it is that
// team's turn. The en passant square is cleared because it only has
// meaning for the side the original Position expected to move.
func ForceTurn(fen string, team domain.Team) (string, error) {
	fields, err := splitFEN(fen)
	if err != nil {
		return "", err
	}
	turn := "w"
	if team == domain.TeamBlack {
		turn = "b"
	}
	if fields[1] != turn {
		fields[1] = turn
		fields[3] = "-"
	}
	return strings.Join(fields, " "), nil
}

// PieceAt returns the FEN letter on sq, if any.
func PieceAt(fen string, sq nchess.Square) (rune, bool) {
	fields, err := splitFEN(fen)
	if err != nil {
		return 0, false
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return 0, false
	}
	ch, ok := board[sq]
	return ch, ok
}

// RemovePiece returns a new FEN with sq emptied. Removing a king also
// drops that side's castling rights so the result stays parseable.
func RemovePiece(fen string, sq nchess.Square) (string, error) {
	fields, err := splitFEN(fen)
	if err != nil {
		return "", err
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return "", err
	}
	ch, ok := board[sq]
	if !ok {
		return fen, nil
	}
	delete(board, sq)
	fields[0] = encodePlacement(board)
	switch ch {
	case 'K':
		fields[2] = stripCastling(fields[2], "KQ")
	case 'k':
		fields[2] = stripCastling(fields[2], "kq")
	}
	return strings.Join(fields, " "), nil
}

// PlacePiece returns a new FEN with the given piece letter on sq,
// replacing whatever stood there.
func PlacePiece(fen string, sq nchess.Square, letter rune) (string, error) {
	fields, err := splitFEN(fen)
	if err != nil {
		return "", err
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return "", err
	}
	board[sq] = letter
	fields[0] = encodePlacement(board)
	return strings.Join(fields, " "), nil
}

// FindKing locates a team's king.
func FindKing(fen string, team domain.Team) (nchess.Square, bool) {
	fields, err := splitFEN(fen)
	if err != nil {
		return nchess.NoSquare, false
	}
	board, err := parsePlacement(fields[0])
	if err != nil {
		return nchess.NoSquare, false
	}
	want := kingLetter(team)
	for sq, ch := range board {
		if ch == want {
			return sq, true
		}
	}
	return nchess.NoSquare, false
}

func stripCastling(rights, letters string) string {
	out := strings.Builder{}
	for _, ch := range rights {
		if ch == '-' || strings.ContainsRune(letters, ch) {
			continue
		}
		out.WriteRune(ch)
	}
	if out.Len() == 0 {
		return "-"
	}
	return out.String()
}

func squareFromText(s string) (nchess.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return nchess.NoSquare, false
	}
	file := nchess.FileA + nchess.File(s[0]-'a')
	rank := nchess.Rank1 + nchess.Rank(s[1]-'1')
	return nchess.NewSquare(file, rank), true
}

func gameFromFEN(fen string) (*nchess.Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return nchess.NewGame(opt), nil
}
