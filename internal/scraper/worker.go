package scraper

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzgen"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
)

type Worker interface {
	StartWork()
	Result() interface{}
	Progress() float64
	Done() bool
	Error() error
}

// Engine is an analyzer that has to be shut down after use.
type Engine interface {
	puzgen.Analyzer
	Close()
}

type EngineFactory func() (Engine, error)

func StockfishFactory(path string, args ...string) EngineFactory {
	return func() (Engine, error) {
		sf, err := puzgen.SetupEngine(path, args...)
		if err != nil {
			return nil, err
		}
		return sf, nil
	}
}

// generation holds the state shared by all workers: the puzzles found so far
// and how far the analysis went.
type generation struct {
	mu       sync.Mutex
	puzzles  []puzzle.Puzzle
	err      error
	done     bool
	progress float64

	engines EngineFactory
	repo    dao.PuzzleRepository
	depth   int
}

func (g *generation) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

func (g *generation) Result() interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]puzzle.Puzzle(nil), g.puzzles...)
}

func (g *generation) Progress() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.progress
}

func (g *generation) Error() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

func (g *generation) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
	g.done = true
}

// analyze runs every game through one engine, storing the puzzles found.
func (g *generation) analyze(games []*chess.Game) {
	engine, err := g.engines()
	if err != nil {
		g.fail(fmt.Errorf("starting engine: %w", err))
		return
	}
	err = g.generate(engine, games)
	engine.Close()
	if err != nil {
		g.fail(err)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress = 1
	g.done = true
	log.Info().Int("games", len(games)).Int("puzzles", len(g.puzzles)).Msg("generation finished")
}

func (g *generation) generate(engine Engine, games []*chess.Game) error {
	gen := puzgen.NewGenerator(engine, g.depth)
	for i, game := range games {
		puzzles, err := gen.AnalyzeGame(game)
		if err != nil {
			return fmt.Errorf("analysing game %d: %w", i+1, err)
		}
		if len(puzzles) > 0 {
			if err := g.repo.InsertAllPuzzles(puzzles); err != nil {
				return fmt.Errorf("saving puzzles: %w", err)
			}
		}

		g.mu.Lock()
		g.puzzles = append(g.puzzles, puzzles...)
		g.progress = float64(i+1) / float64(len(games))
		g.mu.Unlock()
	}
	return nil
}

func scanGames(r io.Reader) ([]*chess.Game, error) {
	scanner := chess.NewScanner(r)
	games := make([]*chess.Game, 0)
	for scanner.Scan() {
		games = append(games, scanner.Next())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return games, nil
}

// PgnWorker generates puzzles from games uploaded as PGN.
type PgnWorker struct {
	generation
	pgn []byte
}

func (w *PgnWorker) StartWork() {
	go w.run()
}

func (w *PgnWorker) run() {
	games, err := scanGames(bytes.NewReader(w.pgn))
	if err != nil {
		w.fail(fmt.Errorf("reading pgn: %w", err))
		return
	}
	if len(games) == 0 {
		w.fail(fmt.Errorf("no games in pgn"))
		return
	}
	w.analyze(games)
}
