package board

import (
	"errors"

	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
)

var (
	ErrLocked     = errors.New("board is locked")
	ErrNotMovable = errors.New("move not allowed on board")
	ErrNoHandler  = errors.New("no move handler registered")
)

// Snapshot is everything a board shows at one moment.
type Snapshot struct {
	FEN         string              `json:"fen"`
	LastMove    *puzzle.Move        `json:"last_move,omitempty"`
	Orientation puzzle.Color        `json:"orientation"`
	Turn        puzzle.Color        `json:"turn"`
	Check       bool                `json:"check"`
	Dests       map[string][]string `json:"dests"`
	Locked      bool                `json:"locked"`
}

// CanMove reports whether the board accepts a drag from one square to
// another.
func (s Snapshot) CanMove(from, to string) bool {
	if s.Locked {
		return false
	}
	for _, d := range s.Dests[from] {
		if d == to {
			return true
		}
	}
	return false
}

// Mirror is a headless board. It keeps the state a graphical board would
// display and accepts input only on legal destinations.
type Mirror struct {
	snap    Snapshot
	handler puzzle.MoveHandler
	closed  bool
}

func NewMirror() *Mirror {
	return &Mirror{}
}

func (m *Mirror) Reset(cfg puzzle.BoardConfig) {
	m.snap = Snapshot{
		FEN:         cfg.Position,
		Orientation: cfg.Orientation,
		Turn:        cfg.Turn,
	}
}

func (m *Mirror) SetPosition(fen string, lastMove *puzzle.Move) {
	m.snap.FEN = fen
	m.snap.LastMove = copyMove(lastMove)
}

func (m *Mirror) AnimateMove(mv puzzle.Move, fen string) {
	m.SetPosition(fen, &mv)
}

func (m *Mirror) SetIndicators(ind puzzle.Indicators) {
	m.snap.Check = ind.Check
	m.snap.Turn = ind.Turn
	m.snap.Dests = ind.Dests
	m.snap.Locked = ind.Locked
}

func (m *Mirror) OnUserMove(h puzzle.MoveHandler) func() {
	m.handler = h
	return func() {
		m.handler = nil
	}
}

func (m *Mirror) Close() error {
	m.closed = true
	m.handler = nil
	return nil
}

// Play drags a piece from one square to another as a user would.
func (m *Mirror) Play(from, to string) error {
	if m.closed || m.snap.Locked {
		return ErrLocked
	}
	if !m.snap.CanMove(from, to) {
		return ErrNotMovable
	}
	if m.handler == nil {
		return ErrNoHandler
	}
	m.handler(from, to)
	return nil
}

func (m *Mirror) Snapshot() Snapshot {
	s := m.snap
	s.LastMove = copyMove(m.snap.LastMove)
	if m.snap.Dests != nil {
		s.Dests = make(map[string][]string, len(m.snap.Dests))
		for k, v := range m.snap.Dests {
			s.Dests[k] = append([]string(nil), v...)
		}
	}
	return s
}

func copyMove(mv *puzzle.Move) *puzzle.Move {
	if mv == nil {
		return nil
	}
	c := *mv
	return &c
}
