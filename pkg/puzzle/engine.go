package puzzle

import "errors"

var (
	ErrInvalidPuzzle = errors.New("invalid puzzle")
	ErrIllegalMove   = errors.New("illegal move")
	ErrSolved        = errors.New("puzzle already solved")
	ErrClosed        = errors.New("controller closed")
)

// RulesEngine is the chess rules capability the controller drives. Every
// position is exchanged as a FEN string.
type RulesEngine interface {
	ApplyMove(m Move) error
	UndoLastMove() error
	Turn() Color
	InCheck() bool
	LegalDestinations(square string) []string
	Position() string
}

type RulesFactory func(fen string) (RulesEngine, error)

// MoveHandler receives moves played on a board view.
type MoveHandler func(from, to string)

type BoardConfig struct {
	Position    string
	Orientation Color
	Turn        Color
}

type Indicators struct {
	Check  bool
	Turn   Color
	Dests  map[string][]string
	Locked bool
}

// BoardView is the rendering side of a puzzle. A view keeps its own copy of
// the displayed position; the controller pushes every change explicitly.
type BoardView interface {
	Reset(cfg BoardConfig)
	SetPosition(fen string, lastMove *Move)
	AnimateMove(m Move, fen string)
	SetIndicators(ind Indicators)
	OnUserMove(h MoveHandler) (unsubscribe func())
	Close() error
}
