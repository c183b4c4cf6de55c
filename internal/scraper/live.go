package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gmkornilov/chess-puzzle-book/internal/dao"
	"github.com/gmkornilov/chess-puzzle-book/pkg/puzgen"
	"github.com/rs/zerolog/log"
)

// moves buffered while the engine is busy with an earlier one
const turnBuffer = 100

type liveTurn struct {
	before  string
	move    string
	gameURL string
}

// TvWatcher follows the games featured on lichess TV and generates puzzles
// from every move played in them.
type TvWatcher struct {
	engines EngineFactory
	repo    dao.PuzzleRepository
	depth   int
	baseURL string
	client  *http.Client

	mu    sync.Mutex
	found int
}

func (f *Factory) CreateTvWatcher() *TvWatcher {
	return &TvWatcher{
		engines: f.Engines,
		repo:    f.Repo,
		depth:   f.Depth,
		baseURL: f.LichessURL,
		client:  &http.Client{},
	}
}

// Found reports how many puzzles were stored so far.
func (w *TvWatcher) Found() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.found
}

// Watch reads the TV feed until ctx is cancelled, reconnecting whenever
// lichess closes the stream.
func (w *TvWatcher) Watch(ctx context.Context) error {
	for {
		err := w.watchOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		log.Debug().Msg("tv feed ended, reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (w *TvWatcher) watchOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/api/tv/feed", nil)
	if err != nil {
		return err
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to tv feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tv feed answered %s", resp.Status)
	}
	return w.Follow(resp.Body)
}

// Follow consumes one feed stream. Moves are analysed on a separate
// goroutine so the stream keeps being read while the engine thinks.
func (w *TvWatcher) Follow(r io.Reader) error {
	engine, err := w.engines()
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	defer engine.Close()

	gen := puzgen.NewGenerator(engine, w.depth)
	turns := make(chan liveTurn, turnBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for t := range turns {
			w.analyzeTurn(gen, t)
		}
	}()

	err = w.readFeed(json.NewDecoder(r), turns)
	close(turns)
	wg.Wait()
	return err
}

func (w *TvWatcher) readFeed(d *json.Decoder, turns chan<- liveTurn) error {
	var prev, gameURL string
	for {
		var cur LiveMessage
		if err := d.Decode(&cur); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decoding tv feed: %w", err)
		}

		switch cur.Action {
		case "featured":
			var gameStart GameStart
			if err := json.Unmarshal(cur.Data, &gameStart); err != nil {
				return fmt.Errorf("decoding featured game: %w", err)
			}
			gameURL = w.baseURL + "/" + gameStart.Id
			prev = completeFEN(gameStart.Fen)
			log.Info().Str("game", gameURL).Msg("new featured game")
		case "fen":
			var gameTurn GameTurn
			if err := json.Unmarshal(cur.Data, &gameTurn); err != nil {
				return fmt.Errorf("decoding position: %w", err)
			}
			if prev != "" && gameTurn.LastMove != "" {
				turns <- liveTurn{before: prev, move: gameTurn.LastMove, gameURL: gameURL}
			}
			prev = completeFEN(gameTurn.Fen)
		default:
			log.Debug().Str("action", cur.Action).Msg("skipping tv message")
		}
	}
}

func (w *TvWatcher) analyzeTurn(gen *puzgen.Generator, t liveTurn) {
	p, ok, err := gen.AnalyzeMove(t.before, t.move)
	if err != nil {
		log.Warn().Err(err).Str("fen", t.before).Str("move", t.move).Msg("skipping move")
		return
	}
	if !ok {
		return
	}
	p.GameURL = t.gameURL
	if _, err := w.repo.InsertPuzzle(p); err != nil {
		log.Error().Err(err).Msg("saving puzzle")
		return
	}
	w.mu.Lock()
	w.found++
	w.mu.Unlock()
	log.Info().Str("fen", p.FEN).Strs("themes", p.Themes).Msg("generated puzzle")
}

// completeFEN fills in the fields the feed leaves out. Castling and en
// passant rights are unknown and dropped. A bare placement has no side to
// move and yields "".
func completeFEN(fen string) string {
	fields := strings.Fields(fen)
	switch {
	case len(fields) >= 4:
		return fen
	case len(fields) >= 2:
		return fields[0] + " " + fields[1] + " - - 0 1"
	}
	return ""
}
