package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-puzzle-book/internal/trainer"
	"github.com/gmkornilov/chess-puzzle-book/pkg/board"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzgen"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/gmkornilov/chess-puzzle-book/pkg/rules"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	errNotAwaiting = errors.New("puzzle is not waiting for a move")
	errNotMovable  = errors.New("move is not available on the board")
	errNoSession   = errors.New("session not found")
)

type session struct {
	mu         sync.Mutex
	id         string
	controller *puzzle.Controller
	view       *board.Mirror
	rating     int
	newRating  *int

	// guarded by SessionApi.mu
	lastUsed time.Time
}

// rate settles the player's rating on the first mistake or on the solve.
// Later results leave it alone.
func (s *session) rate(res puzzle.Result) {
	if s.newRating != nil || res.Outcome == puzzle.Correct {
		return
	}
	p := s.controller.Puzzle()
	total := len(p.Moves) / 2
	correct := (s.controller.Cursor() - 1) / 2
	if res.Outcome == puzzle.Complete {
		correct = total
	}
	r := puzgen.RatingAfterAttempt(s.rating, p.Rating, puzgen.Score(correct, total))
	s.newRating = &r
}

type sessionState struct {
	ID        string         `json:"id"`
	PuzzleID  string         `json:"puzzle_id"`
	State     puzzle.State   `json:"state"`
	Cursor    int            `json:"cursor"`
	Mistakes  int            `json:"mistakes"`
	Rating    int            `json:"rating"`
	NewRating *int           `json:"new_rating,omitempty"`
	Board     board.Snapshot `json:"board"`
}

func (s *session) state() sessionState {
	return sessionState{
		ID:        s.id,
		PuzzleID:  s.controller.Puzzle().ID,
		State:     s.controller.State(),
		Cursor:    s.controller.Cursor(),
		Mistakes:  s.controller.Mistakes(),
		Rating:    s.rating,
		NewRating: s.newRating,
		Board:     s.view.Snapshot(),
	}
}

// SessionApi serves puzzle sessions. A session nobody touched for
// IdleTimeout is closed and forgotten.
type SessionApi struct {
	Service     *trainer.Service
	ImageSize   int
	IdleTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessionApi(service *trainer.Service, imageSize int, idleTimeout time.Duration) *SessionApi {
	return &SessionApi{
		Service:     service,
		ImageSize:   imageSize,
		IdleTimeout: idleTimeout,
		sessions:    make(map[string]*session),
		now:         time.Now,
	}
}

// expire drops idle sessions. Callers hold s.mu; the dropped sessions are
// returned so they can be closed after the lock is released.
func (s *SessionApi) expire(now time.Time) []*session {
	if s.IdleTimeout <= 0 {
		return nil
	}
	var idle []*session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.IdleTimeout {
			delete(s.sessions, id)
			idle = append(idle, sess)
		}
	}
	return idle
}

func closeSessions(sessions []*session) {
	for _, sess := range sessions {
		sess.mu.Lock()
		if err := sess.controller.Close(); err != nil {
			log.Warn().Err(err).Str("session", sess.id).Msg("closing idle session")
		}
		sess.mu.Unlock()
		log.Info().Str("session", sess.id).Msg("idle session expired")
	}
}

type startRequest struct {
	PuzzleID string `json:"puzzle_id"`
	Rating   int    `json:"rating"`
}

type moveRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func (s *SessionApi) Start(ctx *gin.Context) {
	var req startRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			abortWithError(ctx, http.StatusBadRequest, err)
			return
		}
	}
	if req.Rating <= 0 {
		req.Rating = defaultRating
	}

	var (
		p   puzzle.Puzzle
		err error
	)
	if req.PuzzleID != "" {
		p, err = s.Service.GetPuzzle(req.PuzzleID)
	} else {
		p, err = s.Service.RandomPuzzle(req.Rating)
	}
	if err != nil {
		abortWithError(ctx, statusOf(err), err)
		return
	}

	id := uuid.NewString()
	view := board.NewMirror()
	c, err := puzzle.NewController(p, rules.Factory, view,
		puzzle.WithLogger(log.With().Str("session", id).Logger()))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, puzzle.ErrInvalidPuzzle) {
			status = http.StatusUnprocessableEntity
		}
		abortWithError(ctx, status, err)
		return
	}

	sess := &session{id: id, controller: c, view: view, rating: req.Rating}
	s.mu.Lock()
	now := s.now()
	idle := s.expire(now)
	sess.lastUsed = now
	s.sessions[id] = sess
	s.mu.Unlock()
	closeSessions(idle)

	log.Info().Str("session", id).Str("puzzle", p.ID).Msg("session started")
	ctx.JSON(http.StatusCreated, sess.state())
}

func (s *SessionApi) lookup(ctx *gin.Context) (*session, bool) {
	s.mu.Lock()
	now := s.now()
	idle := s.expire(now)
	sess, ok := s.sessions[ctx.Param("id")]
	if ok {
		sess.lastUsed = now
	}
	s.mu.Unlock()
	closeSessions(idle)
	if !ok {
		abortWithError(ctx, http.StatusNotFound, errNoSession)
	}
	return sess, ok
}

func (s *SessionApi) Get(ctx *gin.Context) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	ctx.JSON(http.StatusOK, sess.state())
}

func (s *SessionApi) Move(ctx *gin.Context) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return
	}
	var req moveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.controller.State() != puzzle.AwaitingMove {
		abortWithError(ctx, http.StatusConflict, errNotAwaiting)
		return
	}
	if !sess.view.Snapshot().CanMove(req.From, req.To) {
		abortWithError(ctx, http.StatusUnprocessableEntity, fmt.Errorf("%w: %s%s", errNotMovable, req.From, req.To))
		return
	}

	res, err := sess.controller.SubmitMove(req.From, req.To)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, puzzle.ErrIllegalMove), errors.Is(err, puzzle.ErrInvalidPuzzle):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, puzzle.ErrSolved), errors.Is(err, puzzle.ErrClosed):
			status = http.StatusConflict
		}
		abortWithError(ctx, status, err)
		return
	}
	sess.rate(res)

	ctx.JSON(http.StatusOK, gin.H{
		"result":  res,
		"session": sess.state(),
	})
}

func (s *SessionApi) Hint(ctx *gin.Context) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	square, ok := sess.controller.Hint()
	if !ok {
		abortWithError(ctx, http.StatusConflict, errNotAwaiting)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"square": square,
	})
}

func (s *SessionApi) Image(ctx *gin.Context) {
	sess, ok := s.lookup(ctx)
	if !ok {
		return
	}
	size := s.ImageSize
	if q := ctx.Query("size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			abortWithError(ctx, http.StatusBadRequest, err)
			return
		}
		if n < board.MinImageSize || n > board.MaxImageSize {
			abortWithError(ctx, http.StatusBadRequest, fmt.Errorf("%w: %d", board.ErrImageSize, n))
			return
		}
		size = n
	}

	sess.mu.Lock()
	snap := sess.view.Snapshot()
	sess.mu.Unlock()

	data, err := board.PNG(snap, size)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, board.ErrImageSize) {
			status = http.StatusBadRequest
		}
		abortWithError(ctx, status, err)
		return
	}
	ctx.Data(http.StatusOK, "image/png", data)
}

func (s *SessionApi) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		abortWithError(ctx, http.StatusNotFound, errNoSession)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.controller.Close(); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("closing session")
	}
	ctx.Status(http.StatusNoContent)
}
