package puzgen

import (
	"fmt"
	"io"

	"github.com/freeeve/uci"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"
)

const (
	maxDepth = 10
	multiPV  = 10

	SourceGenerated = "generated"
)

// Analyzer evaluates a position and returns the engine's principal
// variations, best first.
type Analyzer interface {
	Analyze(fen string, depth int) ([]uci.ScoreResult, error)
}

type Stockfish struct {
	engine *uci.Engine
}

func SetupEngine(path string, arg ...string) (*Stockfish, error) {
	e, err := uci.NewEngine(path, arg...)
	if err != nil {
		return nil, err
	}

	err = e.SetOptions(uci.Options{
		MultiPV: multiPV,
		Hash:    128,
		Ponder:  false,
		OwnBook: true,
	})
	if err != nil {
		return nil, err
	}
	return &Stockfish{engine: e}, nil
}

func (s *Stockfish) Analyze(fen string, depth int) ([]uci.ScoreResult, error) {
	if err := s.engine.SetFEN(fen); err != nil {
		return nil, err
	}
	results, err := s.engine.GoDepth(depth)
	if err != nil {
		return nil, err
	}
	return results.Results, nil
}

func (s *Stockfish) Close() {
	s.engine.Close()
}

// Generator turns games into mate puzzles. Positions already analysed are
// remembered so repeated positions across games are skipped.
type Generator struct {
	analyzer Analyzer
	depth    int
	watched  map[string]bool
}

func NewGenerator(a Analyzer, depth int) *Generator {
	if depth <= 0 {
		depth = maxDepth
	}
	return &Generator{
		analyzer: a,
		depth:    depth,
		watched:  make(map[string]bool),
	}
}

// AnalyzeAllGames scans every game of a PGN stream.
func (g *Generator) AnalyzeAllGames(r io.Reader) ([]puzzle.Puzzle, error) {
	scanner := chess.NewScanner(r)

	res := make([]puzzle.Puzzle, 0)
	for scanner.Scan() {
		game := scanner.Next()
		puzzles, err := g.AnalyzeGame(game)
		if err != nil {
			return nil, err
		}
		res = append(res, puzzles...)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return res, fmt.Errorf("scan pgn: %w", err)
	}
	return res, nil
}

// AnalyzeGame looks at the position after every move of game. Whenever the
// side to move has a forced mate, the move that allowed it becomes the
// setup move of a puzzle.
func (g *Generator) AnalyzeGame(game *chess.Game) ([]puzzle.Puzzle, error) {
	moves := game.Moves()
	positions := game.Positions()
	res := make([]puzzle.Puzzle, 0)
	for i, move := range moves {
		if i+1 >= len(positions) {
			break
		}
		p, ok, err := g.puzzleAt(positions[i], move, positions[i+1])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p.GameURL = tagValue(game, "Site")
		log.Debug().Str("fen", p.FEN).Strs("themes", p.Themes).Msg("generated puzzle")
		res = append(res, p)
	}
	return res, nil
}

// AnalyzeMove checks the position reached by playing uciMove from fen.
func (g *Generator) AnalyzeMove(fen, uciMove string) (puzzle.Puzzle, bool, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return puzzle.Puzzle{}, false, err
	}
	before := chess.NewGame(opt).Position()
	move, err := chess.UCINotation{}.Decode(before, uciMove)
	if err != nil {
		return puzzle.Puzzle{}, false, err
	}
	if !isValid(before, move) {
		return puzzle.Puzzle{}, false, fmt.Errorf("%s is not legal in %s", uciMove, fen)
	}
	return g.puzzleAt(before, move, before.Update(move))
}

func tagValue(game *chess.Game, key string) string {
	if tag := game.GetTagPair(key); tag != nil {
		return tag.Value
	}
	return ""
}
