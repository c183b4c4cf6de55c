package scraper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/freeeve/uci"
	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzzle"
)

const scholarsPgn = `[Event "Casual"]
[Site "https://lichess.org/abcdefgh"]
[Result "1-0"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 4. Qxf7# 1-0
`

const blunderPlacement = "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w"

type fakeEngine struct {
	closed bool
}

func (f *fakeEngine) Analyze(fen string, depth int) ([]uci.ScoreResult, error) {
	if strings.HasPrefix(fen, blunderPlacement) {
		return []uci.ScoreResult{{Mate: true, Score: 1, BestMoves: []string{"h5f7"}}}, nil
	}
	return []uci.ScoreResult{{Score: 15, BestMoves: []string{"a2a3"}}}, nil
}

func (f *fakeEngine) Close() {
	f.closed = true
}

func newFactory(t *testing.T, lichess string) (*Factory, dao.Store, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{}
	store := dao.NewMemoryStore()
	return &Factory{
		Engines:    func() (Engine, error) { return engine, nil },
		Repo:       store,
		Depth:      5,
		LichessURL: lichess,
		Client:     http.DefaultClient,
	}, store, engine
}

func waitDone(t *testing.T, w Worker) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !w.Done() {
		if time.Now().After(deadline) {
			t.Fatal("worker did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPgnWorker(t *testing.T) {
	f, store, engine := newFactory(t, "")
	w := f.CreatePgnWorker([]byte(scholarsPgn))
	w.StartWork()
	waitDone(t, w)

	if err := w.Error(); err != nil {
		t.Fatalf("worker error: %v", err)
	}
	found := w.Result().([]puzzle.Puzzle)
	if len(found) != 1 || w.Progress() != 1 {
		t.Fatalf("found %d puzzles, progress %v", len(found), w.Progress())
	}
	if _, err := store.GetPuzzle(found[0].ID); err != nil {
		t.Fatalf("puzzle not stored: %v", err)
	}
	if !engine.closed {
		t.Fatal("engine left running")
	}
}

func TestPgnWorkerEngineFailure(t *testing.T) {
	f, _, _ := newFactory(t, "")
	boom := errors.New("no stockfish")
	f.Engines = func() (Engine, error) { return nil, boom }

	w := f.CreatePgnWorker([]byte(scholarsPgn))
	w.StartWork()
	waitDone(t, w)
	if !errors.Is(w.Error(), boom) {
		t.Fatalf("err = %v, want %v", w.Error(), boom)
	}
}

func TestLichessGameScraper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/games/user/magnus" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("max") != "3" {
			t.Errorf("max = %q", r.URL.Query().Get("max"))
		}
		w.Header().Set("Content-Type", "application/x-chess-pgn")
		_, _ = w.Write([]byte(scholarsPgn))
	}))
	defer srv.Close()

	f, _, _ := newFactory(t, srv.URL)
	w := f.CreateLichessScraper("magnus", 3)
	w.StartWork()
	waitDone(t, w)
	if err := w.Error(); err != nil {
		t.Fatalf("scraper error: %v", err)
	}
	if got := w.Result().([]puzzle.Puzzle); len(got) != 1 {
		t.Fatalf("found %d puzzles, want 1", len(got))
	}

	missing := f.CreateLichessScraper("nobody", 0)
	missing.StartWork()
	waitDone(t, missing)
	if missing.Error() == nil || !strings.Contains(missing.Error().Error(), "doesn't exist") {
		t.Fatalf("err = %v", missing.Error())
	}
}

func TestTvWatcherFollow(t *testing.T) {
	feed := strings.Join([]string{
		`{"t":"featured","d":{"id":"tv123","orientation":"white","players":[],"fen":"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/8/PPPP1PPP/RNBQK1NR w"}}`,
		`{"t":"fen","d":{"fen":"r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b","lm":"d1h5","wc":60,"bc":60}}`,
		`{"t":"fen","d":{"fen":"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w","lm":"g8f6","wc":58,"bc":55}}`,
	}, "\n")

	f, store, _ := newFactory(t, "https://lichess.org")
	w := f.CreateTvWatcher()
	if err := w.Follow(strings.NewReader(feed)); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if w.Found() != 1 {
		t.Fatalf("found %d puzzles, want 1", w.Found())
	}
	stored, err := store.ListPuzzles(10)
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored %v err %v", stored, err)
	}
	if stored[0].GameURL != "https://lichess.org/tv123" {
		t.Fatalf("game url = %q", stored[0].GameURL)
	}
}

func TestCompleteFEN(t *testing.T) {
	tests := map[string]string{
		"8/8/8/8/8/8/8/K6k w":          "8/8/8/8/8/8/8/K6k w - - 0 1",
		"8/8/8/8/8/8/8/K6k b KQ - 0 9": "8/8/8/8/8/8/8/K6k b KQ - 0 9",
		"8/8/8/8/8/8/8/K6k":            "",
	}
	for in, want := range tests {
		if got := completeFEN(in); got != want {
			t.Errorf("completeFEN(%q) = %q, want %q", in, got, want)
		}
	}
}
