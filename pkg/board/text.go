package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/notnil/chess"
)

// Text is a Mirror that prints the board to w whenever an interaction
// completes.
type Text struct {
	*Mirror
	w io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{Mirror: NewMirror(), w: w}
}

func (t *Text) SetIndicators(ind puzzle.Indicators) {
	t.Mirror.SetIndicators(ind)
	t.Print()
}

func (t *Text) Print() {
	diagram, err := Render(t.Snapshot())
	if err != nil {
		fmt.Fprintf(t.w, "cannot draw board: %v\n", err)
		return
	}
	fmt.Fprint(t.w, diagram)
}

var pieceLetters = map[chess.PieceType]string{
	chess.King:   "k",
	chess.Queen:  "q",
	chess.Rook:   "r",
	chess.Bishop: "b",
	chess.Knight: "n",
	chess.Pawn:   "p",
}

// Render draws s as text, from the point of view of s.Orientation. Squares
// of the last move are bracketed.
func Render(s Snapshot) (string, error) {
	b, err := boardOf(s.FEN)
	if err != nil {
		return "", err
	}

	files, ranks := axes(s.Orientation)
	var sb strings.Builder
	for _, r := range ranks {
		sb.WriteString(fmt.Sprintf("%d ", r+1))
		for _, f := range files {
			sq := chess.Square(r*8 + f)
			name := sq.String()
			cell := letter(b.Piece(sq))
			if s.LastMove != nil && (s.LastMove.From == name || s.LastMove.To == name) {
				sb.WriteString("[" + cell + "]")
			} else {
				sb.WriteString(" " + cell + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString(" ")
	for _, f := range files {
		sb.WriteString(fmt.Sprintf("  %c", 'a'+f))
	}
	sb.WriteString("\n")

	status := fmt.Sprintf("%s to move", s.Turn)
	if s.Check {
		status += ", check"
	}
	if s.Locked {
		status += " (locked)"
	}
	sb.WriteString(status + "\n")
	return sb.String(), nil
}

func letter(p chess.Piece) string {
	if p == chess.NoPiece {
		return "."
	}
	l := pieceLetters[p.Type()]
	if p.Color() == chess.White {
		l = strings.ToUpper(l)
	}
	return l
}

// axes returns file and rank indexes in drawing order, top-left first.
func axes(orientation puzzle.Color) (files, ranks []int) {
	for i := 0; i < 8; i++ {
		if orientation == puzzle.Black {
			files = append(files, 7-i)
			ranks = append(ranks, i)
		} else {
			files = append(files, i)
			ranks = append(ranks, 7-i)
		}
	}
	return files, ranks
}

func boardOf(fen string) (*chess.Board, error) {
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return chess.NewGame(fenFunc).Position().Board(), nil
}
