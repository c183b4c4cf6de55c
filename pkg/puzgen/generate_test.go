package puzgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/freeeve/uci"
	"github.com/notnil/chess"
)

const scholarsPgn = `[Event "Casual"]
[Site "https://lichess.org/abcdefgh"]
[White "a"]
[Black "b"]
[Result "1-0"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0
`

// after 3...Nf6 white mates with Qxf7
const blunderPlacement = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w"

type fakeAnalyzer struct {
	byPlacement map[string][]uci.ScoreResult
	err         error
	calls       int
}

func (f *fakeAnalyzer) Analyze(fen string, depth int) ([]uci.ScoreResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for prefix, res := range f.byPlacement {
		if strings.HasPrefix(fen, prefix) {
			return res, nil
		}
	}
	return []uci.ScoreResult{{Score: 20, BestMoves: []string{"a2a3"}}}, nil
}

func scholarsGame(t *testing.T) *chess.Game {
	t.Helper()
	pgn, err := chess.PGN(strings.NewReader(scholarsPgn))
	if err != nil {
		t.Fatalf("pgn: %v", err)
	}
	return chess.NewGame(pgn)
}

func TestAnalyzeGameFindsMate(t *testing.T) {
	a := &fakeAnalyzer{byPlacement: map[string][]uci.ScoreResult{
		blunderPlacement: {
			{Mate: true, Score: 1, BestMoves: []string{"h5f7"}},
			{Score: 300, BestMoves: []string{"h5e5"}},
		},
	}}
	g := NewGenerator(a, 0)

	puzzles, err := g.AnalyzeGame(scholarsGame(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(puzzles) != 1 {
		t.Fatalf("got %d puzzles, want 1", len(puzzles))
	}
	p := puzzles[0]
	if !strings.HasPrefix(p.FEN, "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b") {
		t.Fatalf("fen = %q", p.FEN)
	}
	if len(p.Moves) != 2 || p.Moves[0].String() != "g8f6" || p.Moves[1].String() != "h5f7" {
		t.Fatalf("moves = %v", p.Moves)
	}
	if !p.HasTheme("mateIn1") || p.Rating != EstimateRating(1) {
		t.Fatalf("themes %v rating %d", p.Themes, p.Rating)
	}
	if p.GameURL != "https://lichess.org/abcdefgh" || p.Source != SourceGenerated {
		t.Fatalf("url %q source %q", p.GameURL, p.Source)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("generated puzzle invalid: %v", err)
	}
}

func TestAnalyzeGameSkipsAmbiguousMate(t *testing.T) {
	a := &fakeAnalyzer{byPlacement: map[string][]uci.ScoreResult{
		blunderPlacement: {
			{Mate: true, Score: 1, BestMoves: []string{"h5f7"}},
			{Mate: true, Score: 1, BestMoves: []string{"c4f7"}},
		},
	}}
	puzzles, err := NewGenerator(a, 5).AnalyzeGame(scholarsGame(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(puzzles) != 0 {
		t.Fatalf("got %d puzzles, want none", len(puzzles))
	}
}

func TestAnalyzeGameSkipsIllegalLine(t *testing.T) {
	a := &fakeAnalyzer{byPlacement: map[string][]uci.ScoreResult{
		blunderPlacement: {{Mate: true, Score: 1, BestMoves: []string{"h5h8"}}},
	}}
	puzzles, err := NewGenerator(a, 5).AnalyzeGame(scholarsGame(t))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(puzzles) != 0 {
		t.Fatalf("got %d puzzles, want none", len(puzzles))
	}
}

func TestAnalyzeGameRemembersPositions(t *testing.T) {
	a := &fakeAnalyzer{}
	g := NewGenerator(a, 5)
	if _, err := g.AnalyzeGame(scholarsGame(t)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	first := a.calls
	if first != 7 {
		t.Fatalf("analysed %d positions, want 7", first)
	}
	if _, err := g.AnalyzeGame(scholarsGame(t)); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if a.calls != first {
		t.Fatalf("repeated game analysed again: %d calls", a.calls)
	}
}

func TestAnalyzeGamePropagatesEngineErrors(t *testing.T) {
	boom := errors.New("engine died")
	_, err := NewGenerator(&fakeAnalyzer{err: boom}, 5).AnalyzeGame(scholarsGame(t))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestAnalyzeAllGames(t *testing.T) {
	a := &fakeAnalyzer{byPlacement: map[string][]uci.ScoreResult{
		blunderPlacement: {{Mate: true, Score: 1, BestMoves: []string{"h5f7"}}},
	}}
	puzzles, err := NewGenerator(a, 5).AnalyzeAllGames(strings.NewReader(scholarsPgn))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(puzzles) != 1 {
		t.Fatalf("got %d puzzles, want 1", len(puzzles))
	}
}

func TestAnalyzeMove(t *testing.T) {
	a := &fakeAnalyzer{byPlacement: map[string][]uci.ScoreResult{
		blunderPlacement: {{Mate: true, Score: 1, BestMoves: []string{"h5f7"}}},
	}}
	g := NewGenerator(a, 5)
	const before = "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 3 3"

	p, ok, err := g.AnalyzeMove(before, "g8f6")
	if err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	if !strings.HasPrefix(p.FEN, "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b") || len(p.Moves) != 2 {
		t.Fatalf("puzzle = %+v", p)
	}

	if _, _, err := g.AnalyzeMove(before, "g8g6"); err == nil {
		t.Fatal("expected an error for an illegal move")
	}
}
