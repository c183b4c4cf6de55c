package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/notnil/chess"
)

var ErrNothingToUndo = errors.New("no move to undo")

type snapshot struct {
	fen   string
	check bool
}

// Engine adapts a notnil/chess game to puzzle.RulesEngine and adds undo.
type Engine struct {
	game    *chess.Game
	check   bool
	history []snapshot
	san     []string
}

func New(fen string) (*Engine, error) {
	game, err := newGame(fen)
	if err != nil {
		return nil, err
	}
	return &Engine{
		game:  game,
		check: probeCheck(fen),
	}, nil
}

// Factory matches puzzle.RulesFactory.
func Factory(fen string) (puzzle.RulesEngine, error) {
	e, err := New(fen)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newGame(fen string) (*chess.Game, error) {
	fenFunc, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	return chess.NewGame(fenFunc), nil
}

// ApplyMove plays m if it is legal. A promotion without an explicit piece
// becomes a queen.
func (e *Engine) ApplyMove(m puzzle.Move) error {
	valid := e.find(m)
	if valid == nil {
		return fmt.Errorf("%s is not legal in %s", m, e.game.FEN())
	}
	san := chess.AlgebraicNotation{}.Encode(e.game.Position(), valid)
	prev := snapshot{fen: e.game.FEN(), check: e.check}
	if err := e.game.Move(valid); err != nil {
		return err
	}
	e.history = append(e.history, prev)
	e.san = append(e.san, san)
	e.check = valid.HasTag(chess.Check)
	return nil
}

func (e *Engine) find(m puzzle.Move) *chess.Move {
	promo := promotion(m.Promotion)
	for _, valid := range e.game.ValidMoves() {
		if valid.S1().String() != m.From || valid.S2().String() != m.To {
			continue
		}
		if valid.Promo() != chess.NoPieceType && valid.Promo() != promo {
			continue
		}
		return valid
	}
	return nil
}

func promotion(s string) chess.PieceType {
	switch strings.ToLower(s) {
	case "r":
		return chess.Rook
	case "b":
		return chess.Bishop
	case "n":
		return chess.Knight
	}
	return chess.Queen
}

func (e *Engine) UndoLastMove() error {
	if len(e.history) == 0 {
		return ErrNothingToUndo
	}
	prev := e.history[len(e.history)-1]
	game, err := newGame(prev.fen)
	if err != nil {
		return err
	}
	e.game = game
	e.check = prev.check
	e.history = e.history[:len(e.history)-1]
	e.san = e.san[:len(e.san)-1]
	return nil
}

func (e *Engine) Turn() puzzle.Color {
	if e.game.Position().Turn() == chess.White {
		return puzzle.White
	}
	return puzzle.Black
}

func (e *Engine) InCheck() bool {
	return e.check
}

func (e *Engine) LegalDestinations(square string) []string {
	var dests []string
	seen := make(map[string]bool)
	for _, m := range e.game.ValidMoves() {
		if m.S1().String() != square {
			continue
		}
		to := m.S2().String()
		if !seen[to] {
			seen[to] = true
			dests = append(dests, to)
		}
	}
	return dests
}

func (e *Engine) Position() string {
	return e.game.FEN()
}

// Moves returns the moves applied so far in standard algebraic notation.
func (e *Engine) Moves() []string {
	return append([]string(nil), e.san...)
}

func (e *Engine) Checkmate() bool {
	return e.game.Method() == chess.Checkmate
}

// probeCheck reports whether the side to move in fen is in check. It hands
// the move to the other side and looks for a move that lands on the king.
// Checks given by a piece pinned against its own king are not seen.
func probeCheck(fen string) bool {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return false
	}
	side := chess.White
	if fields[1] == "b" {
		side = chess.Black
	}
	if side == chess.White {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if len(fields) > 3 {
		fields[3] = "-"
	}

	game, err := newGame(strings.Join(fields, " "))
	if err != nil {
		return false
	}
	king, ok := kingSquare(game.Position().Board(), side)
	if !ok {
		return false
	}
	for _, m := range game.ValidMoves() {
		if m.S2() == king {
			return true
		}
	}
	return false
}

func kingSquare(b *chess.Board, c chess.Color) (chess.Square, bool) {
	for sq := chess.A1; sq <= chess.H8; sq++ {
		p := b.Piece(sq)
		if p.Type() == chess.King && p.Color() == c {
			return sq, true
		}
	}
	return chess.NoSquare, false
}
