package puzgen

import (
	"fmt"

	"github.com/freeeve/uci"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
	"github.com/google/uuid"
	"github.com/notnil/chess"
)

// maxMate is the longest forced mate turned into a puzzle.
const maxMate = 5

func compareResults(baseRes uci.ScoreResult, cmpRes uci.ScoreResult) bool {
	if baseRes.Mate {
		return cmpRes.Mate && baseRes.Score == cmpRes.Score
	}
	return baseRes.Score-cmpRes.Score <= 50
}

func filterResults(results []uci.ScoreResult) []uci.ScoreResult {
	baseRes := results[0]
	filteredResults := make([]uci.ScoreResult, 0)
	for _, item := range results {
		if compareResults(baseRes, item) {
			filteredResults = append(filteredResults, item)
		}
	}
	return filteredResults
}

func (g *Generator) puzzleAt(before *chess.Position, setup *chess.Move, after *chess.Position) (puzzle.Puzzle, bool, error) {
	fen := after.String()
	if g.watched[fen] {
		return puzzle.Puzzle{}, false, nil
	}
	g.watched[fen] = true

	results, err := g.analyzer.Analyze(fen, g.depth)
	if err != nil {
		return puzzle.Puzzle{}, false, err
	}
	if len(results) == 0 {
		return puzzle.Puzzle{}, false, nil
	}
	best := results[0]
	if !best.Mate || best.Score < 1 || best.Score > maxMate {
		return puzzle.Puzzle{}, false, nil
	}
	// a second first move mating just as fast makes the puzzle ambiguous
	if len(filterResults(results)) > 1 {
		return puzzle.Puzzle{}, false, nil
	}

	line, err := mateLine(before, setup, best)
	if err != nil {
		return puzzle.Puzzle{}, false, nil
	}

	return puzzle.Puzzle{
		ID:     uuid.NewString(),
		FEN:    before.String(),
		Moves:  line,
		Rating: EstimateRating(best.Score),
		Themes: []string{"mate", fmt.Sprintf("mateIn%d", best.Score)},
		Source: SourceGenerated,
	}, true, nil
}

// mateLine replays the setup move and the engine's line, checking each move
// against the rules, and returns them as puzzle moves.
func mateLine(before *chess.Position, setup *chess.Move, best uci.ScoreResult) ([]puzzle.Move, error) {
	need := 2*best.Score - 1
	if len(best.BestMoves) < need {
		return nil, fmt.Errorf("line of %d moves is shorter than mate in %d", len(best.BestMoves), best.Score)
	}

	pos := before
	uciMoves := append([]string{chess.UCINotation{}.Encode(before, setup)}, best.BestMoves[:need]...)
	line := make([]puzzle.Move, 0, len(uciMoves))
	for _, s := range uciMoves {
		m, err := chess.UCINotation{}.Decode(pos, s)
		if err != nil {
			return nil, err
		}
		if !isValid(pos, m) {
			return nil, fmt.Errorf("%s is not legal", s)
		}
		pm, err := puzzle.ParseMove(s)
		if err != nil {
			return nil, err
		}
		line = append(line, pm)
		pos = pos.Update(m)
	}
	return line, nil
}

func isValid(pos *chess.Position, m *chess.Move) bool {
	for _, valid := range pos.ValidMoves() {
		if valid.S1() == m.S1() && valid.S2() == m.S2() && valid.Promo() == m.Promo() {
			return true
		}
	}
	return false
}
