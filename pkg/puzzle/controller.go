package puzzle

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type State int

const (
	AwaitingMove State = iota
	Solved
	Closed
)

func (s State) String() string {
	switch s {
	case AwaitingMove:
		return "awaiting_move"
	case Solved:
		return "solved"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Outcome int

const (
	Incorrect Outcome = iota
	Correct
	Complete
)

func (o Outcome) String() string {
	switch o {
	case Incorrect:
		return "incorrect"
	case Correct:
		return "correct"
	case Complete:
		return "solved"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result describes what a submitted move did. Reply is set when the
// scripted answer was played.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Move    Move    `json:"move"`
	Reply   *Move   `json:"reply,omitempty"`
}

type Option func(*Controller)

// WithSolvedHook registers fn to run once the last scripted move is played.
func WithSolvedHook(fn func()) Option {
	return func(c *Controller) {
		c.onSolved = fn
	}
}

// WithResultHook registers fn to run after every accepted move.
func WithResultHook(fn func(Result)) Option {
	return func(c *Controller) {
		c.onResult = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// Controller walks a player through a puzzle. It owns one rules engine and
// one board view and keeps the view in step with the engine.
//
// A Controller is not safe for concurrent use; callers serialise access the
// way a UI event loop would.
type Controller struct {
	puzzle Puzzle
	rules  RulesEngine
	view   BoardView

	cursor   int
	state    State
	mistakes int
	last     *Result

	unsubscribe func()
	onSolved    func()
	onResult    func(Result)
	log         zerolog.Logger
}

// NewController sets the puzzle up: the first scripted move is played on a
// fresh engine and the view is prepared for the side that answers it.
func NewController(p Puzzle, newRules RulesFactory, view BoardView, opts ...Option) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		puzzle: p,
		view:   view,
		log:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("puzzle", p.ID).Logger()

	rules, err := newRules(p.FEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPuzzle, err)
	}
	c.rules = rules

	// the engine promotes to a queen unless the move names a piece
	setup := p.Moves[0]
	if err := c.rules.ApplyMove(setup); err != nil {
		return nil, fmt.Errorf("%w: setup move %s: %v", ErrInvalidPuzzle, setup, err)
	}

	side := c.rules.Turn()
	c.view.Reset(BoardConfig{
		Position:    p.FEN,
		Orientation: side,
		Turn:        side,
	})
	c.view.AnimateMove(setup, c.rules.Position())
	c.unsubscribe = c.view.OnUserMove(c.handleUserMove)
	c.cursor = 1
	c.RefreshBoardIndicators()

	c.log.Debug().Str("side", string(side)).Msg("puzzle ready")
	return c, nil
}

func (c *Controller) handleUserMove(from, to string) {
	if _, err := c.SubmitMove(from, to); err != nil {
		c.log.Warn().Err(err).Str("from", from).Str("to", to).Msg("move rejected")
	}
}

// SubmitMove plays from-to for the solver. A wrong move is taken back and
// reported as Incorrect; it is not an error. A scripted reply the rules
// reject takes the solver's move back too and yields ErrInvalidPuzzle.
func (c *Controller) SubmitMove(from, to string) (Result, error) {
	switch c.state {
	case Solved:
		return Result{}, ErrSolved
	case Closed:
		return Result{}, ErrClosed
	}

	// the expected move carries the promotion piece the solver can't name
	played := Move{From: from, To: to}
	expected := c.puzzle.Moves[c.cursor]
	if expected.Matches(from, to) {
		played.Promotion = expected.Promotion
	}
	if err := c.rules.ApplyMove(played); err != nil {
		c.syncView(c.lastScripted())
		return Result{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, played, err)
	}
	if !expected.Matches(from, to) {
		return c.revert(played)
	}

	res := Result{Outcome: Correct, Move: played}
	afterPlayed := c.rules.Position()
	if c.cursor+1 < len(c.puzzle.Moves) {
		reply := c.puzzle.Moves[c.cursor+1]
		if err := c.rules.ApplyMove(reply); err != nil {
			c.log.Error().Err(err).Str("reply", reply.String()).Msg("scripted reply rejected")
			if undoErr := c.rules.UndoLastMove(); undoErr != nil {
				return Result{}, fmt.Errorf("undo %s: %w", played, undoErr)
			}
			c.syncView(c.lastScripted())
			return Result{}, fmt.Errorf("%w: scripted reply %s: %v", ErrInvalidPuzzle, reply, err)
		}
		c.view.SetPosition(afterPlayed, &played)
		c.view.AnimateMove(reply, c.rules.Position())
		res.Reply = &reply
	} else {
		c.view.SetPosition(afterPlayed, &played)
	}

	c.cursor += 2
	if c.cursor >= len(c.puzzle.Moves) {
		c.state = Solved
		res.Outcome = Complete
	}
	c.RefreshBoardIndicators()

	c.log.Debug().
		Str("move", played.String()).
		Int("cursor", c.cursor).
		Stringer("state", c.state).
		Msg("correct move")
	c.finish(res)
	if res.Outcome == Complete && c.onSolved != nil {
		c.onSolved()
	}
	return res, nil
}

func (c *Controller) revert(played Move) (Result, error) {
	if err := c.rules.UndoLastMove(); err != nil {
		return Result{}, fmt.Errorf("undo %s: %w", played, err)
	}
	c.mistakes++
	c.syncView(c.lastScripted())
	res := Result{Outcome: Incorrect, Move: played}

	c.log.Debug().Str("move", played.String()).Int("mistakes", c.mistakes).Msg("incorrect move")
	c.finish(res)
	return res, nil
}

func (c *Controller) finish(res Result) {
	c.last = &res
	if c.onResult != nil {
		c.onResult(res)
	}
}

func (c *Controller) syncView(lastMove *Move) {
	c.view.SetPosition(c.rules.Position(), lastMove)
	c.RefreshBoardIndicators()
}

func (c *Controller) lastScripted() *Move {
	m := c.puzzle.Moves[c.cursor-1]
	return &m
}

// RefreshBoardIndicators pushes check, turn and legal destinations to the
// view.
func (c *Controller) RefreshBoardIndicators() {
	dests := make(map[string][]string)
	for _, sq := range Squares {
		to := c.rules.LegalDestinations(sq)
		if len(to) == 0 {
			continue
		}
		sorted := append([]string(nil), to...)
		sort.Strings(sorted)
		dests[sq] = sorted
	}
	c.view.SetIndicators(Indicators{
		Check:  c.rules.InCheck(),
		Turn:   c.rules.Turn(),
		Dests:  dests,
		Locked: c.state != AwaitingMove,
	})
}

// Hint returns the origin square of the move the solver is expected to play.
func (c *Controller) Hint() (string, bool) {
	if c.state != AwaitingMove {
		return "", false
	}
	return c.puzzle.Moves[c.cursor].From, true
}

func (c *Controller) Cursor() int {
	return c.cursor
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Mistakes() int {
	return c.mistakes
}

func (c *Controller) Puzzle() Puzzle {
	return c.puzzle
}

func (c *Controller) Position() string {
	return c.rules.Position()
}

func (c *Controller) LastResult() (Result, bool) {
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// Close detaches the controller from its view and releases the view.
func (c *Controller) Close() error {
	if c.state == Closed {
		return nil
	}
	c.state = Closed
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	return c.view.Close()
}
